package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"homepro-server/config"
	"homepro-server/models"
)

// MailSender is satisfied by *gomail.Dialer
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier emails the booking owner once a payment confirms their booking
type MailNotifier struct {
	db     *gorm.DB
	sender MailSender
	from   string
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// NewMailNotifier creates a mail notifier backed by an SMTP dialer
func NewMailNotifier(db *gorm.DB, cfg config.SMTPConfig, log zerolog.Logger) *MailNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return newMailNotifier(db, dialer, cfg.From, log)
}

func newMailNotifier(db *gorm.DB, sender MailSender, from string, log zerolog.Logger) *MailNotifier {
	return &MailNotifier{
		db:     db,
		sender: sender,
		from:   from,
		log:    log.With().Str("component", "mailer").Logger(),
	}
}

// NotifyBooking sends the confirmation mail in the background
func (m *MailNotifier) NotifyBooking(ctx context.Context, event BookingEvent) {
	if event.Type != BookingEventConfirmed {
		return
	}

	var user models.User
	if err := m.db.WithContext(ctx).Select("id", "email", "full_name").First(&user, event.UserID).Error; err != nil {
		m.log.Error().Err(err).Uint("user_id", event.UserID).Msg("❌ Failed to load booking owner for mail")
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Booking #%d confirmed", event.BookingID))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nyour booking #%d on %s at %s is confirmed.\nAmount paid: %.2f\n\nHomePro",
		user.FullName, event.BookingID, event.ServiceDate, event.ServiceTime, event.TotalAmount,
	))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.sender.DialAndSend(msg); err != nil {
			m.log.Error().Err(err).Uint("booking_id", event.BookingID).Msg("❌ Failed to send confirmation mail")
			return
		}
		m.log.Info().Uint("booking_id", event.BookingID).Msg("📧 Confirmation mail sent")
	}()
}

// Wait blocks until in-flight mails are done
func (m *MailNotifier) Wait() {
	m.wg.Wait()
}
