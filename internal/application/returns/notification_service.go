package returns

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/returns/backend/internal/domain/rma"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mailer delivers a single HTML mail. Implementations live in
// infrastructure; tests use a fake.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NotificationService sends customer mails for return request milestones.
// Every send is best-effort: failures are logged and reported as false,
// never as errors, so a broken mail server cannot block the return flow.
// History entries are written only for mails that actually went out.
type NotificationService struct {
	mailer   Mailer
	history  *HistoryService
	shopName string
	logger   *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(mailer Mailer, history *HistoryService, shopName string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		mailer:   mailer,
		history:  history,
		shopName: shopName,
		logger:   logger,
	}
}

// SendConfirmation mails the creation confirmation
func (s *NotificationService) SendConfirmation(ctx context.Context, r *rma.RMA, to string) bool {
	subject := fmt.Sprintf("Ihre Retoure %s", r.Number)
	body := s.render("Ihre Retoure ist eingegangen", map[string]string{
		"RMA-Nummer": r.Number,
		"Positionen": fmt.Sprintf("%d", r.ItemCount()),
		"Betrag":     r.TotalGross.StringFixed(2) + " EUR",
	})
	return s.send(ctx, r.ID, rma.EventEmailConfirmation, to, subject, body)
}

// SendStatusUpdate mails the current processing status
func (s *NotificationService) SendStatusUpdate(ctx context.Context, r *rma.RMA, to string) bool {
	subject := fmt.Sprintf("Neuer Status für Retoure %s", r.Number)
	body := s.render("Der Status Ihrer Retoure hat sich geändert", map[string]string{
		"RMA-Nummer": r.Number,
		"Status":     r.Status.String(),
	})
	return s.send(ctx, r.ID, rma.EventEmailStatusUpdate, to, subject, body)
}

// SendVoucher mails a refund voucher code
func (s *NotificationService) SendVoucher(ctx context.Context, r *rma.RMA, to, voucherCode string) bool {
	subject := fmt.Sprintf("Ihr Gutschein zur Retoure %s", r.Number)
	body := s.render("Ihr Gutschein ist da", map[string]string{
		"RMA-Nummer":    r.Number,
		"Gutscheincode": voucherCode,
		"Betrag":        r.TotalGross.StringFixed(2) + " EUR",
	})
	return s.send(ctx, r.ID, rma.EventEmailVoucherSent, to, subject, body)
}

// SendRefund mails the refund confirmation
func (s *NotificationService) SendRefund(ctx context.Context, r *rma.RMA, to string, amount decimal.Decimal) bool {
	subject := fmt.Sprintf("Erstattung zur Retoure %s", r.Number)
	body := s.render("Ihre Erstattung wurde veranlasst", map[string]string{
		"RMA-Nummer": r.Number,
		"Betrag":     amount.StringFixed(2) + " EUR",
	})
	return s.send(ctx, r.ID, rma.EventEmailRefundSent, to, subject, body)
}

// SendAdminAlert mails an operational alert to the shop admin. No history
// entry is written because the alert belongs to no single return request.
func (s *NotificationService) SendAdminAlert(ctx context.Context, to, subject, message string) bool {
	body := s.render(subject, map[string]string{"Meldung": message})
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Error("Failed to send admin alert",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return false
	}
	return true
}

// send delivers a customer mail and records the matching history event
func (s *NotificationService) send(ctx context.Context, rmaID int64, kind rma.EventKind, to, subject, body string) bool {
	if to == "" {
		s.logger.Warn("Skipping mail without recipient",
			zap.Int64("rma_id", rmaID),
			zap.String("kind", string(kind)),
		)
		return false
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.logger.Error("Failed to send return mail",
			zap.Int64("rma_id", rmaID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return false
	}
	s.history.Record(ctx, rmaID, kind, map[string]any{"to": to}, nil)
	return true
}

// render builds a minimal HTML body from a heading and key/value lines
func (s *NotificationService) render(heading string, vars map[string]string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(fmt.Sprintf("<h2>%s</h2><table>", heading))
	for _, key := range sortedKeys(vars) {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td></tr>", key, vars[key]))
	}
	b.WriteString("</table>")
	b.WriteString(fmt.Sprintf("<p>%s</p>", s.shopName))
	b.WriteString("</body></html>")
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
