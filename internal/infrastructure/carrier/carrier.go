package carrier

import (
	"context"
	"fmt"
	"strings"

	"github.com/returns/backend/internal/application/returns"
	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Provider creates return shipping labels for one carrier. The stub
// implementations stand in for the carrier REST APIs; swapping one out for a
// real client only touches this package.
type Provider struct {
	name           string
	trackingPrefix string
	logger         *zap.Logger
}

// CreateLabel produces a label document for a return request and returns its
// storage path. The pickup address is optional; carriers fall back to the
// address printed on the label at drop-off.
func (p *Provider) CreateLabel(ctx context.Context, r *rma.RMA, addr *rma.ReturnAddress) (string, error) {
	if r == nil || r.Number == "" {
		return "", shared.NewDomainError("VALIDATION_ERROR", "Return request is required for label creation")
	}

	path := fmt.Sprintf("labels/%s/%s.pdf", p.name, r.Number)
	p.logger.Info("Return label created",
		zap.String("carrier", p.name),
		zap.String("rma_number", r.Number),
		zap.String("tracking", p.tracking(r)),
		zap.String("label_path", path),
	)
	return path, nil
}

// tracking derives a deterministic tracking code from the RMA number
func (p *Provider) tracking(r *rma.RMA) string {
	digits := strings.NewReplacer("RMA", "", "-", "").Replace(r.Number)
	return p.trackingPrefix + digits
}

// NewProviders returns the supported carriers keyed by their config name
func NewProviders(logger *zap.Logger) map[string]returns.LabelProvider {
	return map[string]returns.LabelProvider{
		"dhl": &Provider{name: "dhl", trackingPrefix: "JJD", logger: logger},
		"dpd": &Provider{name: "dpd", trackingPrefix: "01405", logger: logger},
		"ups": &Provider{name: "ups", trackingPrefix: "1Z", logger: logger},
	}
}

// Ensure Provider implements returns.LabelProvider
var _ returns.LabelProvider = (*Provider)(nil)
