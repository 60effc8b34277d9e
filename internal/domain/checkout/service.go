package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	apperrors "github.com/yanqian/agentic-commerce/pkg/errors"
	"github.com/yanqian/agentic-commerce/pkg/util"
)

const (
	defaultDeliveryDays = 5
	confirmationLength  = 12
	confirmationAlpha   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Config controls the simulated executor.
type Config struct {
	StepDelay time.Duration `yaml:"stepDelay"`
}

// Service plans and executes simulated multi-retailer checkouts.
type Service interface {
	Plan(cart shopping.Cart, user UserInfo, sessionID string) (Plan, error)
	Execute(ctx context.Context, plan Plan) (Result, error)
}

type service struct {
	cfg     Config
	logger  *slog.Logger
	confirm func() (string, error)
	orderID func() string
}

// NewService wires the checkout domain.
func NewService(cfg Config, logger *slog.Logger) Service {
	if cfg.StepDelay < 0 {
		cfg.StepDelay = 0
	}
	return &service{
		cfg:     cfg,
		logger:  logger.With("component", "checkout.service"),
		confirm: confirmationNumber,
		orderID: func() string { return uuid.NewString() },
	}
}

func (s *service) Plan(cart shopping.Cart, user UserInfo, sessionID string) (Plan, error) {
	user, err := normalizeUser(user)
	if err != nil {
		return Plan{}, err
	}

	var order []string
	groups := make(map[string][]shopping.CartItem)
	for _, item := range cart.Items {
		retailer := item.Selected.Product.Retailer
		if _, ok := groups[retailer]; !ok {
			order = append(order, retailer)
		}
		groups[retailer] = append(groups[retailer], item)
	}

	plan := Plan{Steps: make([]RetailerStep, 0, len(order)), UserInfo: user, SessionID: sessionID}
	var total float64
	for _, retailer := range order {
		items := groups[retailer]
		var subtotal, shipping float64
		maxDays := 0
		for _, item := range items {
			p := item.Selected.Product
			subtotal += p.Price
			if p.DeliveryCost != nil {
				shipping += *p.DeliveryCost
			}
			days := defaultDeliveryDays
			if p.DeliveryDays != nil {
				days = *p.DeliveryDays
			}
			if days > maxDays {
				maxDays = days
			}
		}
		step := RetailerStep{
			Retailer:          retailer,
			Items:             items,
			Subtotal:          util.RoundTo(subtotal, 2),
			ShippingCost:      util.RoundTo(shipping, 2),
			EstimatedDelivery: fmt.Sprintf("%d business days", maxDays),
			Status:            StatusPending,
		}
		total += step.Subtotal + step.ShippingCost
		plan.Steps = append(plan.Steps, step)
	}
	plan.Total = util.RoundTo(total, 2)
	return plan, nil
}

func (s *service) Execute(ctx context.Context, plan Plan) (Result, error) {
	completed := make([]RetailerStep, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		if err := s.wait(ctx); err != nil {
			return Result{}, err
		}
		code, err := s.confirm()
		if err != nil {
			return Result{}, fmt.Errorf("generate confirmation: %w", err)
		}
		step.Status = StatusConfirmed
		step.ConfirmationNumber = &code
		completed = append(completed, step)
	}

	result := Result{
		OrderID:      s.orderID(),
		Success:      true,
		Steps:        completed,
		TotalCharged: plan.Total,
		Message:      fmt.Sprintf("All %d retailer orders confirmed successfully!", len(completed)),
	}
	s.logger.Info("checkout executed", "order_id", result.OrderID, "retailers", len(completed), "total", result.TotalCharged)
	return result, nil
}

func (s *service) wait(ctx context.Context) error {
	if s.cfg.StepDelay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.cfg.StepDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizeUser(user UserInfo) (UserInfo, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"fullName", &user.FullName},
		{"email", &user.Email},
		{"addressLine1", &user.AddressLine1},
		{"city", &user.City},
		{"state", &user.State},
		{"zipCode", &user.ZipCode},
	}
	for _, field := range required {
		*field.value = strings.TrimSpace(*field.value)
		if *field.value == "" {
			return UserInfo{}, apperrors.Wrap("invalid_input", field.name+" is required", nil)
		}
	}
	if strings.TrimSpace(user.Country) == "" {
		user.Country = "US"
	}
	return user, nil
}

func confirmationNumber() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(confirmationAlpha)))
	for i := 0; i < confirmationLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(confirmationAlpha[n.Int64()])
	}
	return b.String(), nil
}
