package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oakhaven/contracts/internal/config"
	"github.com/oakhaven/contracts/internal/model"
	"github.com/oakhaven/contracts/internal/validate"
)

// DocumentStore persists contract documents.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*model.Contract, error)
	Save(ctx context.Context, doc *model.Contract) (*model.Contract, error)
}

type ExcelGenerator interface {
	Generate(doc model.Contract) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.Contract) ([]byte, error)
}

// ContractService is the authoritative side of the save protocol: it
// validates candidate payloads, hands out single-use save tokens, and on
// commit recalculates every financial figure before persisting. Client
// aggregates are display-only; what this service computes is the value of
// record.
type ContractService struct {
	store  DocumentStore
	tokens *tokenStore
	excel  ExcelGenerator
	pdf    PDFGenerator
	log    zerolog.Logger
}

func NewContractService(store DocumentStore, excel ExcelGenerator, pdf PDFGenerator, cfg *config.Config, log zerolog.Logger) *ContractService {
	ttl := cfg.Contracts.SaveTokenTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ContractService{
		store:  store,
		tokens: newTokenStore(ttl),
		excel:  excel,
		pdf:    pdf,
		log:    log,
	}
}

func (s *ContractService) Get(ctx context.Context, id string) (*model.Contract, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: contract id is required", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// ValidateOutcome carries either a save token or the field errors that
// blocked it, never both.
type ValidateOutcome struct {
	Token  string            `json:"token,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Validate checks a candidate payload and stores it behind a save token.
// Draft-status contracts get lenient rules; anything further along is held
// to the full commit rules.
func (s *ContractService) Validate(ctx context.Context, payload *model.Contract) (*ValidateOutcome, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is required", ErrInvalidInput)
	}

	mode := validate.ModeDraft
	if payload.Meta.Status != "" && payload.Meta.Status != model.ContractStatusDraft {
		mode = validate.ModeCommit
	}
	v := validate.New(validate.LocationContext{LocationID: payload.LocationID})
	summary := v.All(model.DraftFromContract(payload), mode)
	if !summary.Valid() {
		return &ValidateOutcome{Errors: summary.ErrorsByPath}, nil
	}

	token := s.tokens.Put(payload)
	s.log.Debug().Str("contract_id", payload.ID).Str("token", token).Msg("payload validated")
	return &ValidateOutcome{Token: token}, nil
}

// Commit consumes a save token, recalculates the stored candidate and
// persists it, returning the authoritative document.
func (s *ContractService) Commit(ctx context.Context, token string) (*model.Contract, error) {
	payload, ok := s.tokens.Take(token)
	if !ok {
		return nil, ErrTokenExpired
	}

	doc := recalculate(payload)
	saved, err := s.store.Save(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("contract_id", saved.ID).Msg("contract committed")
	return saved, nil
}

// ExportStatement renders the itemized statement of goods and services as a
// spreadsheet.
func (s *ContractService) ExportStatement(ctx context.Context, id string) (string, []byte, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if doc == nil {
		return "", nil, ErrNotFound
	}
	content, err := s.excel.Generate(*doc)
	if err != nil {
		return "", nil, err
	}
	return statementFileName(doc, "xlsx"), content, nil
}

// ExportStatementPDF renders the printable contract statement.
func (s *ContractService) ExportStatementPDF(ctx context.Context, id string) (string, []byte, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if doc == nil {
		return "", nil, ErrNotFound
	}
	content, err := s.pdf.Generate(*doc)
	if err != nil {
		return "", nil, err
	}
	return statementFileName(doc, "pdf"), content, nil
}

func statementFileName(doc *model.Contract, ext string) string {
	number := doc.ContractNumber
	if number == "" {
		number = doc.ID
	}
	return fmt.Sprintf("contract-%s-statement.%s", number, ext)
}

// recalculate is the authoritative pass over a committed payload: id
// assignment for new rows, per-line tax amounts, sale totals, contract
// number, and timestamps.
func recalculate(payload *model.Contract) *model.Contract {
	doc := *payload
	now := time.Now().UTC()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
		doc.Meta.CreatedAt = now
	}
	if doc.ContractNumber == "" {
		doc.ContractNumber = buildContractNumber(doc.ID, now)
	}
	if doc.Meta.Status == "" {
		doc.Meta.Status = model.ContractStatusDraft
	}
	doc.Meta.UpdatedAt = now

	for i := range doc.People {
		if doc.People[i].ID == "" {
			doc.People[i].ID = uuid.NewString()
			doc.People[i].CreatedAt = now
		}
		doc.People[i].UpdatedAt = now
	}

	for i := range doc.Sales {
		sale := &doc.Sales[i]
		if sale.ID == "" {
			sale.ID = uuid.NewString()
		}
		sale.Subtotal = 0
		sale.TaxTotal = 0
		sale.DiscountTotal = 0
		for j := range sale.Items {
			item := &sale.Items[j]
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			for k := range item.SalesTax {
				item.SalesTax[k].TaxAmount = float64(item.Quantity) * item.UnitPrice * (item.SalesTax[k].TaxRate / 100)
			}
			if item.IsCancelled {
				continue
			}
			sale.Subtotal += float64(item.Quantity) * item.UnitPrice
			for _, tax := range item.SalesTax {
				sale.TaxTotal += tax.TaxAmount
			}
			for _, d := range item.Discounts {
				sale.DiscountTotal += d.Amount
			}
		}
		sale.GrandTotal = sale.Subtotal + sale.TaxTotal - sale.DiscountTotal
	}

	for i := range doc.Payments {
		if doc.Payments[i].ID == "" {
			doc.Payments[i].ID = uuid.NewString()
		}
		doc.Payments[i].IsNew = false
	}

	return &doc
}

func buildContractNumber(id string, now time.Time) string {
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("FC-%s-%s", now.Format("20060102"), suffix)
}
