package smtp

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	log "github.com/sirupsen/logrus"
)

var Instance Provider

type Provider interface {
	SendEMail(to, subject, message string) error
}

func Connect(user, password, host, port, from string, tlsEnabled bool) {
	Instance = &impl{
		user:       user,
		password:   password,
		host:       host,
		port:       port,
		from:       from,
		tlsEnabled: tlsEnabled,
	}
}

type impl struct {
	user       string
	password   string
	host       string
	port       string
	from       string
	tlsEnabled bool
}

func (i impl) SendEMail(to, subject, message string) (err error) {
	logger := log.WithField("recipient", to)
	if i.user == "" || i.host == "" || i.port == "" {
		logger.Warn("Письмо не отправлено, тк не настроен smtp клиент")
		return nil
	}
	sendTo := []string{
		to,
	}
	auth := sasl.NewPlainClient("", i.user, i.password)
	mimeHeaders := "MIME-version: 1.0;\nContent-Type: text/plain; charset=\"UTF-8\";\r\n"
	body := strings.NewReader(fmt.Sprintf("Subject: Glue - %s\n%s\r\n%s\r\n", subject, mimeHeaders, message))

	if i.tlsEnabled {
		err = smtp.SendMailTLS(i.host+":"+i.port, auth, i.from, sendTo, body)
	} else {
		err = smtp.SendMail(i.host+":"+i.port, auth, i.from, sendTo, body)
	}
	if err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
		return err
	}
	logger.Info("письмо отправлено")
	return nil
}
