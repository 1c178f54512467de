// Package notify sends low-balance alerts by e-mail.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"

	"budgetcal/internal/core"
	"budgetcal/internal/log"
)

// maxListedDays caps the risk days printed in one alert.
const maxListedDays = 10

var ErrNoRecipient = errors.New("alert has no recipient")

// RiskAlert describes the days on which a user's balance is projected to
// fall below the threshold.
type RiskAlert struct {
	UserID    string
	To        string
	Currency  string
	Threshold core.Money
	Days      []core.BalancePoint
}

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender delivers alerts over SMTP.
type Sender struct {
	addr   string
	auth   smtp.Auth
	from   string
	send   sendFunc
	logger *log.Logger
}

func NewSender(host string, port int, username, password, from string, logger *log.Logger) *Sender {
	if logger == nil {
		logger = log.FromDefault(log.ComponentNotify)
	}
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Sender{
		addr: host + ":" + strconv.Itoa(port),
		auth: auth,
		from: from,
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
		logger: logger,
	}
}

func (s *Sender) SendRiskAlert(ctx context.Context, a RiskAlert) error {
	if a.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.from
	e.To = []string{a.To}
	e.Subject = Subject(a)
	e.Text = []byte(Body(a))

	if err := s.send(e, s.addr, s.auth); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send risk alert",
			log.FieldUserID, a.UserID,
			log.FieldError, err)
		return fmt.Errorf("send risk alert: %w", err)
	}

	s.logger.InfoContext(ctx, "Risk alert sent",
		log.FieldUserID, a.UserID,
		log.FieldRiskDays, len(a.Days))
	return nil
}

func Subject(a RiskAlert) string {
	if len(a.Days) == 0 {
		return "Your balance stays above your threshold"
	}
	return fmt.Sprintf("Low balance expected on %s", a.Days[0].Date)
}

// Body renders the plain-text alert listing the first risk days.
func Body(a RiskAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your projected balance falls below %s on %d day(s).\n\n",
		core.FormatMoney(a.Threshold, a.Currency), len(a.Days))

	for i, d := range a.Days {
		if i == maxListedDays {
			fmt.Fprintf(&b, "  ... and %d more\n", len(a.Days)-maxListedDays)
			break
		}
		kind := "scheduled"
		if d.Projected {
			kind = "forecast"
		}
		fmt.Fprintf(&b, "  %s  %s  (%s)\n", d.Date, core.FormatMoney(d.Balance, a.Currency), kind)
	}

	b.WriteString("\nOpen your calendar to review upcoming expenses.\n")
	return b.String()
}
