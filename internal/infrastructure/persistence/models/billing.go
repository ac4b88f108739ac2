package models

import (
	"time"

	"github.com/billing/backend/internal/domain/client"
	"github.com/billing/backend/internal/domain/contract"
	"github.com/billing/backend/internal/domain/installment"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for the Client aggregate root
type ClientModel struct {
	AggregateModel
	Name     string `gorm:"type:varchar(200);not null;index"`
	Document string `gorm:"type:varchar(20)"`
	Email    string `gorm:"type:varchar(200)"`
	Phone    string `gorm:"type:varchar(30)"`
	Active   bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *client.Client {
	return &client.Client{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Document:          m.Document,
		Email:             m.Email,
		Phone:             m.Phone,
		Active:            m.Active,
	}
}

// ClientModelFromDomain converts a domain Client to its persistence model
func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{
		Name:     c.Name,
		Document: c.Document,
		Email:    c.Email,
		Phone:    c.Phone,
		Active:   c.Active,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// ContractModel is the persistence model for the Contract aggregate root
type ContractModel struct {
	AggregateModel
	ContractNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientName       string          `gorm:"type:varchar(200);not null"`
	TotalValue       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DownPayment      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InstallmentCount int             `gorm:"not null"`
	FirstDueDate     time.Time       `gorm:"type:date;not null"`
	Notes            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract
func (m *ContractModel) ToDomain() *contract.Contract {
	return &contract.Contract{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ContractNumber:    m.ContractNumber,
		ClientID:          m.ClientID,
		ClientName:        m.ClientName,
		TotalValue:        valueobject.NewMoneyBRL(m.TotalValue),
		DownPayment:       valueobject.NewMoneyBRL(m.DownPayment),
		InstallmentCount:  m.InstallmentCount,
		FirstDueDate:      m.FirstDueDate.UTC(),
		Notes:             m.Notes,
	}
}

// ContractModelFromDomain converts a domain Contract to its persistence model
func ContractModelFromDomain(c *contract.Contract) *ContractModel {
	m := &ContractModel{
		ContractNumber:   c.ContractNumber,
		ClientID:         c.ClientID,
		ClientName:       c.ClientName,
		TotalValue:       c.TotalValue.Amount(),
		DownPayment:      c.DownPayment.Amount(),
		InstallmentCount: c.InstallmentCount,
		FirstDueDate:     c.FirstDueDate,
		Notes:            c.Notes,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// InstallmentModel is the persistence model for the Installment aggregate root
type InstallmentModel struct {
	AggregateModel
	ContractID  uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_installment_contract_seq,priority:1"`
	ClientID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	ClientName  string           `gorm:"type:varchar(200);not null"`
	Sequence    int              `gorm:"not null;uniqueIndex:idx_installment_contract_seq,priority:2"`
	Amount      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	DueDate     time.Time        `gorm:"type:date;not null;index"`
	Status      string           `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentDate *time.Time       `gorm:"type:date;index"`
	PaidAmount  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	DaysLate    int              `gorm:"not null;default:0"`
	Note        string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment
func (m *InstallmentModel) ToDomain() *installment.Installment {
	item := &installment.Installment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ContractID:        m.ContractID,
		ClientID:          m.ClientID,
		ClientName:        m.ClientName,
		Sequence:          m.Sequence,
		Amount:            valueobject.NewMoneyBRL(m.Amount),
		DueDate:           m.DueDate.UTC(),
		Status:            installment.Status(m.Status),
		DaysLate:          m.DaysLate,
		Note:              m.Note,
	}
	if m.PaymentDate != nil {
		date := m.PaymentDate.UTC()
		item.PaymentDate = &date
	}
	if m.PaidAmount != nil {
		amount := valueobject.NewMoneyBRL(*m.PaidAmount)
		item.PaidAmount = &amount
	}
	return item
}

// InstallmentModelFromDomain converts a domain Installment to its persistence model
func InstallmentModelFromDomain(i *installment.Installment) *InstallmentModel {
	m := &InstallmentModel{
		ContractID: i.ContractID,
		ClientID:   i.ClientID,
		ClientName: i.ClientName,
		Sequence:   i.Sequence,
		Amount:     i.Amount.Amount(),
		DueDate:    i.DueDate,
		Status:     string(i.Status),
		DaysLate:   i.DaysLate,
		Note:       i.Note,
	}
	if i.PaymentDate != nil {
		date := *i.PaymentDate
		m.PaymentDate = &date
	}
	if i.PaidAmount != nil {
		amount := i.PaidAmount.Amount()
		m.PaidAmount = &amount
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
