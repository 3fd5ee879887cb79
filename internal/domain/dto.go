package domain

import (
	"github.com/google/uuid"
)

// DTOs for API requests and responses

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps list payloads with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ProjectDTO is the API representation of a Project
type ProjectDTO struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	OwnerID         uuid.UUID     `json:"ownerId"`
	OwnerName       string        `json:"ownerName,omitempty"`
	Budget          float64       `json:"budget"`
	CommittedBudget float64       `json:"committedBudget"`
	RemainingBudget float64       `json:"remainingBudget"`
	CostCenter      string        `json:"costCenter,omitempty"`
	ProjectNumber   string        `json:"projectNumber,omitempty"`
	Area            string        `json:"area,omitempty"`
	AreaType        string        `json:"areaType,omitempty"`
	EndDate         string        `json:"endDate,omitempty"` // ISO 8601
	Status          ProjectStatus `json:"status"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	OwnerID       string  `json:"ownerId" validate:"required,uuid"`
	Budget        float64 `json:"budget" validate:"gte=0"`
	CostCenter    string  `json:"costCenter" validate:"max=50"`
	ProjectNumber string  `json:"projectNumber" validate:"max=50"`
	Area          string  `json:"area" validate:"max=100"`
	AreaType      string  `json:"areaType" validate:"max=100"`
	EndDate       string  `json:"endDate,omitempty"`
	Status        string  `json:"status" validate:"omitempty,oneof=activo pausado completado"`
}

// UpdateProjectRequest is the payload for administrative project edits
type UpdateProjectRequest struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Budget     *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	CostCenter *string  `json:"costCenter,omitempty" validate:"omitempty,max=50"`
	Area       *string  `json:"area,omitempty" validate:"omitempty,max=100"`
	AreaType   *string  `json:"areaType,omitempty" validate:"omitempty,max=100"`
	EndDate    *string  `json:"endDate,omitempty"`
	Status     *string  `json:"status,omitempty" validate:"omitempty,oneof=activo pausado completado"`
}

// CatalogEntryDTO is the API representation of a CatalogEntry
type CatalogEntryDTO struct {
	ID             uuid.UUID        `json:"id"`
	Company        string           `json:"company"`
	CompanyName    string           `json:"companyName"`
	Kind           CatalogKind      `json:"dataType"`
	ContractActive bool             `json:"contractActive"`
	Items          []CatalogItemDTO `json:"data"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
}

// CatalogItemDTO is the API representation of a CatalogItem
type CatalogItemDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model,omitempty"`
	Price        float64   `json:"price"`
	Stock        int       `json:"stock"`
	Availability string    `json:"availability"`
}

// CreateCatalogEntryRequest is the payload for registering a supplier catalog
type CreateCatalogEntryRequest struct {
	Company        string                     `json:"company" validate:"required,max=100"`
	CompanyName    string                     `json:"companyName" validate:"required,max=200"`
	Kind           string                     `json:"dataType" validate:"required,oneof=productos servicios"`
	ContractActive *bool                      `json:"contractActive,omitempty"`
	Items          []CreateCatalogItemRequest `json:"data" validate:"dive"`
}

// CreateCatalogItemRequest is one catalog line in a create/update payload
type CreateCatalogItemRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Model string  `json:"model" validate:"max=200"`
	Price float64 `json:"price" validate:"gte=0"`
	Stock int     `json:"stock" validate:"gte=0"`
}

// CartLineRequest is a transient pre-commit cart line. CatalogItemID, when
// set, resolves the line against that catalog item directly; otherwise the
// line matches by name/model and is ad-hoc when nothing matches.
type CartLineRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Model         string  `json:"model" validate:"max=200"`
	Kind          string  `json:"kind" validate:"required,oneof=productos servicios"`
	Quantity      int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice     float64 `json:"unitPrice" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"omitempty,len=3"`
	CatalogItemID string  `json:"catalogItemId,omitempty" validate:"omitempty,uuid"`
}

// CheckoutRequest commits a cart against a project
type CheckoutRequest struct {
	ProjectID string            `json:"projectId" validate:"required,uuid"`
	Priority  string            `json:"priority" validate:"omitempty,oneof=baja media alta"`
	Lines     []CartLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateOrderRequest replaces an order's lines (edit-and-resubmit)
type UpdateOrderRequest struct {
	Priority string            `json:"priority" validate:"omitempty,oneof=baja media alta"`
	Lines    []CartLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// OrderLineDTO is the API representation of an OrderLine
type OrderLineDTO struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Model           string      `json:"model,omitempty"`
	Kind            CatalogKind `json:"kind"`
	Quantity        int         `json:"quantity"`
	UnitPrice       float64     `json:"unitPrice"`
	Currency        string      `json:"currency"`
	CatalogItemID   *uuid.UUID  `json:"catalogItemId,omitempty"`
	Selected        *bool       `json:"selected,omitempty"`
	RejectionReason string      `json:"rejectionReason,omitempty"`
}

// OrderDTO is the API representation of an Order
type OrderDTO struct {
	ID              uuid.UUID      `json:"id"`
	OrderNumber     string         `json:"orderNumber"`
	Family          OrderFamily    `json:"family"`
	Kind            CatalogKind    `json:"kind"`
	RequesterID     uuid.UUID      `json:"requesterId"`
	RequesterName   string         `json:"requesterName,omitempty"`
	ProjectID       uuid.UUID      `json:"projectId"`
	Lines           []OrderLineDTO `json:"lines"`
	Total           float64        `json:"total"`
	Currency        string         `json:"currency"`
	Status          OrderStatus    `json:"status"`
	Priority        OrderPriority  `json:"priority"`
	DenialReason    string         `json:"denialReason,omitempty"`
	StatusUpdatedAt string         `json:"statusUpdatedAt,omitempty"`
	StatusUpdatedBy string         `json:"statusUpdatedBy,omitempty"`
	IsDeleted       bool           `json:"isDeleted"`
	Proposal        *ProposalDTO   `json:"proposal,omitempty"`
	CreatedAt       string         `json:"createdAt"`
	UpdatedAt       string         `json:"updatedAt"`
}

// CheckoutResponse returns the orders created from one cart. A mixed cart
// produces one order per kind.
type CheckoutResponse struct {
	Orders          []OrderDTO `json:"orders"`
	RemainingBudget float64    `json:"remainingBudget"`
}

// LineSelectionRequest marks one line approved or rejected
type LineSelectionRequest struct {
	LineID          string `json:"lineId" validate:"required,uuid"`
	Selected        bool   `json:"selected"`
	RejectionReason string `json:"rejectionReason" validate:"max=500"`
}

// SelectItemsRequest is the back-office Selection over a catalog-backed order
type SelectItemsRequest struct {
	Selections []LineSelectionRequest `json:"selections" validate:"required,min=1,dive"`
}

// RespondSelectionRequest is the requester's checkbox response to a Selection
type RespondSelectionRequest struct {
	Selections []LineSelectionRequest `json:"selections" validate:"required,min=1,dive"`
}

// ProposalCandidateRequest is one {company, budget, tariff} offer.
// Budget is a pointer so a missing value can be told apart from zero.
type ProposalCandidateRequest struct {
	Company string   `json:"company" validate:"required,max=200"`
	Budget  *float64 `json:"budget" validate:"required,gte=0"`
	Tariff  string   `json:"tariff" validate:"max=500"`
}

// SendProposalRequest attaches a proposal to a non-catalog order
type SendProposalRequest struct {
	TotalBudget    float64                    `json:"totalBudget" validate:"gte=0"`
	ServiceDetails string                     `json:"serviceDetails,omitempty"`
	Candidates     []ProposalCandidateRequest `json:"candidates" validate:"required,min=1,dive"`
}

// RespondProposalRequest is the requester's answer to a proposal.
// CandidateIndex is mandatory when the proposal lists more than one candidate
// and the response is an acceptance.
type RespondProposalRequest struct {
	Accept         bool `json:"accept"`
	CandidateIndex *int `json:"candidateIndex,omitempty" validate:"omitempty,gte=0"`
}

// DenyOrderRequest denies an order with a reason from the enumerated list,
// or a free-text reason when the list reason is "Otra razón"
type DenyOrderRequest struct {
	Reason     string `json:"reason" validate:"required,max=500"`
	FreeReason string `json:"freeReason" validate:"max=500"`
}

// SetStatusRequest sets a manual, non-terminal status (En proceso, Aceptado)
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof='En proceso' Aceptado"`
}

// CompleteOrderResponse carries the fixed contact-for-delivery notice
type CompleteOrderResponse struct {
	Order  OrderDTO `json:"order"`
	Notice string   `json:"notice"`
}

// ProposalCandidateDTO is the API representation of a ProposalCandidate
type ProposalCandidateDTO struct {
	ID       uuid.UUID `json:"id"`
	Company  string    `json:"company"`
	Budget   float64   `json:"budget"`
	Tariff   string    `json:"tariff,omitempty"`
	Position int       `json:"position"`
}

// ProposalDTO is the API representation of a Proposal
type ProposalDTO struct {
	ID             uuid.UUID              `json:"id"`
	OrderID        uuid.UUID              `json:"orderId"`
	TotalBudget    float64                `json:"totalBudget"`
	ServiceDetails string                 `json:"serviceDetails,omitempty"`
	SubmittedAt    string                 `json:"submittedAt"`
	RespondedAt    string                 `json:"respondedAt,omitempty"`
	Accepted       *bool                  `json:"accepted,omitempty"`
	ChosenCompany  string                 `json:"chosenCompany,omitempty"`
	Candidates     []ProposalCandidateDTO `json:"candidates"`
	OptimalIndex   int                    `json:"optimalIndex"`
}

// MessageDTO is the API representation of a Message
type MessageDTO struct {
	ID            uuid.UUID  `json:"id"`
	OrderID       uuid.UUID  `json:"orderId"`
	RecipientRole UserRole   `json:"recipientRole"`
	RecipientID   *uuid.UUID `json:"recipientId,omitempty"`
	SenderID      uuid.UUID  `json:"senderId"`
	SenderRole    UserRole   `json:"senderRole"`
	UserAction    string     `json:"userAction"`
	Read          bool       `json:"read"`
	ReadAt        string     `json:"readAt,omitempty"`
	ReadBy        string     `json:"readBy,omitempty"`
	Timestamp     string     `json:"timestamp"`
}

// UnreadCountDTO carries an unread message count
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// RemainingBudgetDTO carries derived budget figures for a project
type RemainingBudgetDTO struct {
	ProjectID       uuid.UUID `json:"projectId"`
	Budget          float64   `json:"budget"`
	CommittedBudget float64   `json:"committedBudget"`
	RemainingBudget float64   `json:"remainingBudget"`
}
