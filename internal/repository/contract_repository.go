package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oakhaven/contracts/internal/model"
)

// ContractRepository persists contract documents. Sub-collections live as
// jsonb columns on the contract row: the document is always read and
// written as one aggregate.
type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

type contractRow struct {
	ID                       string `gorm:"primaryKey"`
	ContractNumber           string
	LocationID               string
	NeedType                 string
	PrePrintedContractNumber string
	Status                   string
	IsCancelled              bool
	DateExecuted             *time.Time
	DateSigned               *time.Time
	People                   json.RawMessage `gorm:"type:jsonb"`
	Sales                    json.RawMessage `gorm:"type:jsonb"`
	Payments                 json.RawMessage `gorm:"type:jsonb"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (contractRow) TableName() string { return "contracts" }

func (r *ContractRepository) Get(ctx context.Context, id string) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rowToDocument(&row)
}

func (r *ContractRepository) Save(ctx context.Context, doc *model.Contract) (*model.Contract, error) {
	row, err := documentToRow(doc)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}
	return r.Get(ctx, row.ID)
}

func rowToDocument(row *contractRow) (*model.Contract, error) {
	doc := &model.Contract{
		ID:                       row.ID,
		ContractNumber:           row.ContractNumber,
		LocationID:               row.LocationID,
		NeedType:                 model.NeedType(row.NeedType),
		PrePrintedContractNumber: row.PrePrintedContractNumber,
		Meta: model.ContractMeta{
			Status:       model.ContractStatus(row.Status),
			DateExecuted: row.DateExecuted,
			DateSigned:   row.DateSigned,
			IsCancelled:  row.IsCancelled,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		},
	}
	if err := json.Unmarshal(row.People, &doc.People); err != nil {
		return nil, fmt.Errorf("decode people: %w", err)
	}
	if err := json.Unmarshal(row.Sales, &doc.Sales); err != nil {
		return nil, fmt.Errorf("decode sales: %w", err)
	}
	if err := json.Unmarshal(row.Payments, &doc.Payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return doc, nil
}

func documentToRow(doc *model.Contract) (*contractRow, error) {
	people, err := json.Marshal(doc.People)
	if err != nil {
		return nil, fmt.Errorf("encode people: %w", err)
	}
	sales, err := json.Marshal(doc.Sales)
	if err != nil {
		return nil, fmt.Errorf("encode sales: %w", err)
	}
	payments, err := json.Marshal(doc.Payments)
	if err != nil {
		return nil, fmt.Errorf("encode payments: %w", err)
	}
	return &contractRow{
		ID:                       doc.ID,
		ContractNumber:           doc.ContractNumber,
		LocationID:               doc.LocationID,
		NeedType:                 string(doc.NeedType),
		PrePrintedContractNumber: doc.PrePrintedContractNumber,
		Status:                   string(doc.Meta.Status),
		IsCancelled:              doc.Meta.IsCancelled,
		DateExecuted:             doc.Meta.DateExecuted,
		DateSigned:               doc.Meta.DateSigned,
		People:                   people,
		Sales:                    sales,
		Payments:                 payments,
		CreatedAt:                doc.Meta.CreatedAt,
		UpdatedAt:                doc.Meta.UpdatedAt,
	}, nil
}
