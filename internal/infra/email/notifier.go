package email

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPNotifier struct {
	host     string
	port     int
	from     string
	to       string
	logger   *zap.Logger
	sendMail sendFunc
}

func NewSMTPNotifier(host string, port int, from, to string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, to: to, logger: logger, sendMail: smtp.SendMail}
}

func (n *SMTPNotifier) NotifyCameraDown(_ context.Context, cameraID, detail string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	subject := fmt.Sprintf("Snapshot API - Camera %s is not responding", cameraID)
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"A snapshot capture for camera %s failed after it was previously healthy.\r\n\r\n"+
			"Camera: %s\r\n"+
			"Error: %s\r\n"+
			"Time: %s\r\n\r\n"+
			"You will not be notified again until the camera recovers and fails once more.\r\n\r\n"+
			"-- Snapshot API",
		cameraID, cameraID, detail, time.Now().UTC().Format(time.RFC3339),
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, n.to, subject, body,
	)

	err := n.sendMail(addr, nil, n.from, []string{n.to}, []byte(msg))
	if err != nil {
		n.logger.Error("failed to send camera down email",
			zap.String("to", n.to),
			zap.String("camera_id", cameraID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("camera down email sent",
		zap.String("to", n.to),
		zap.String("camera_id", cameraID),
	)
	return nil
}
