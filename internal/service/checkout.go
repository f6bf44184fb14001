package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/FurnitureStore/internal/domain"
	"github.com/utafrali/FurnitureStore/internal/repository"
	"github.com/utafrali/FurnitureStore/internal/store"
	apperrors "github.com/utafrali/FurnitureStore/pkg/errors"
)

const whatsAppBase = "https://wa.me/"

// lookupConcurrency bounds parallel catalog reads while resolving a cart.
const lookupConcurrency = 4

var errOrderTooLarge = apperrors.InvalidInput("order total is too large")

// CheckoutConfig configures the WhatsApp order message.
type CheckoutConfig struct {
	Phone    string
	Currency string
	Greeting string
}

// CheckoutLine is one resolved cart entry.
type CheckoutLine struct {
	Item      string          `json:"item"`
	ItemType  domain.ItemType `json:"itemType"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice int64           `json:"unitPrice"`
	LineTotal int64           `json:"lineTotal"`
}

// Checkout is a ready-to-send WhatsApp order.
type Checkout struct {
	Message string             `json:"message"`
	URL     string             `json:"url"`
	Total   int64              `json:"total"`
	Lines   []CheckoutLine     `json:"lines"`
	Missing []domain.CartEntry `json:"missing"`
}

// CheckoutService turns a cart into a WhatsApp order message.
type CheckoutService struct {
	products    repository.ProductRepository
	collections repository.CollectionRepository
	cfg         CheckoutConfig
	logger      *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(products repository.ProductRepository, collections repository.CollectionRepository, cfg CheckoutConfig, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		products:    products,
		collections: collections,
		cfg:         cfg,
		logger:      logger,
	}
}

// WhatsApp resolves the cart against the catalog and renders the order.
// Entries whose item no longer exists are reported in Missing and skipped.
func (s *CheckoutService) WhatsApp(ctx context.Context, st store.CartStore) (*Checkout, error) {
	cart, err := st.LoadCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart for checkout: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.EmptyCart("cart is empty")
	}

	lines := make([]*CheckoutLine, len(cart.Entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, entry := range cart.Entries {
		g.Go(func() error {
			line, err := s.resolve(gctx, entry)
			if err != nil {
				return err
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Checkout{Lines: []CheckoutLine{}, Missing: []domain.CartEntry{}}
	for i, line := range lines {
		if line == nil {
			out.Missing = append(out.Missing, cart.Entries[i])
			continue
		}
		if line.LineTotal > math.MaxInt64-out.Total {
			return nil, errOrderTooLarge
		}
		out.Lines = append(out.Lines, *line)
		out.Total += line.LineTotal
	}
	if len(out.Lines) == 0 {
		return nil, apperrors.EmptyCart("none of the items in the cart are available anymore")
	}

	out.Message = s.render(out)
	out.URL = whatsAppURL(s.cfg.Phone, out.Message)

	s.logger.InfoContext(ctx, "whatsapp checkout prepared",
		slog.Int("lines", len(out.Lines)),
		slog.Int("missing", len(out.Missing)),
		slog.Int64("total", out.Total),
	)
	return out, nil
}

// resolve returns nil for an entry whose item is gone from the catalog.
func (s *CheckoutService) resolve(ctx context.Context, e domain.CartEntry) (*CheckoutLine, error) {
	var (
		name    string
		pricing domain.Pricing
		err     error
	)
	switch e.ItemType {
	case domain.ItemTypeProduct:
		var p *domain.Product
		if p, err = s.products.GetByID(ctx, e.Item); err == nil {
			name, pricing = p.Name, p.Pricing
		}
	case domain.ItemTypeCollection:
		var c *domain.Collection
		if c, err = s.collections.GetByID(ctx, e.Item); err == nil {
			name, pricing = c.Name, c.Pricing
		}
	default:
		return nil, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s %s: %w", e.ItemType, e.Item, err)
	}

	unit := pricing.EffectivePrice()
	if unit > 0 && int64(e.Quantity) > math.MaxInt64/unit {
		return nil, errOrderTooLarge
	}
	return &CheckoutLine{
		Item:      e.Item,
		ItemType:  e.ItemType,
		Name:      name,
		Quantity:  e.Quantity,
		UnitPrice: unit,
		LineTotal: unit * int64(e.Quantity),
	}, nil
}

func (s *CheckoutService) render(c *Checkout) string {
	var b strings.Builder
	b.WriteString(s.cfg.Greeting)
	b.WriteString("\n\n")
	for i, l := range c.Lines {
		fmt.Fprintf(&b, "%d. %s (%s) x%d - %s\n", i+1, l.Name, strings.ToLower(string(l.ItemType)), l.Quantity, s.money(l.LineTotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s", s.money(c.Total))
	return b.String()
}

// money renders minor units, e.g. 129900 -> "1299.00 PLN".
func (s *CheckoutService) money(minor int64) string {
	amount := decimal.New(minor, -2).StringFixed(2)
	if s.cfg.Currency == "" {
		return amount
	}
	return amount + " " + s.cfg.Currency
}

func whatsAppURL(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	// wa.me expects %20 for spaces in the text parameter.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsAppBase + digits + "?text=" + text
}
