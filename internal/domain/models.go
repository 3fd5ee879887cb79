package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key in the application; the Postgres
// schema additionally carries a gen_random_uuid() default for rows
// inserted outside of it
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole represents the role a user acts under
type UserRole string

const (
	RoleRequester  UserRole = "solicitante"
	RoleAdmin      UserRole = "administracion"
	RoleCommercial UserRole = "comercial"
	RoleManager    UserRole = "gestor"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleRequester, RoleAdmin, RoleCommercial, RoleManager:
		return true
	}
	return false
}

// IsBackOffice reports whether the role belongs to the back-office side
// (administration, commercial agents, managers) as opposed to requesters.
func (r UserRole) IsBackOffice() bool {
	return r == RoleAdmin || r == RoleCommercial || r == RoleManager
}

// Counterpart returns the role on the other side of the requester/back-office
// relay. Back-office roles collapse to administration for message routing.
func (r UserRole) Counterpart() UserRole {
	if r == RoleRequester {
		return RoleAdmin
	}
	return RoleRequester
}

// User represents a system user (requester or back-office)
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key"`
	Email       string         `gorm:"type:varchar(255);not null;unique"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:display_name"`
	Role        UserRole       `gorm:"type:varchar(50);not null;default:'solicitante';index"`
	Areas       pq.StringArray `gorm:"type:text[]"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "activo"
	ProjectStatusPaused    ProjectStatus = "pausado"
	ProjectStatusCompleted ProjectStatus = "completado"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (ps ProjectStatus) IsValid() bool {
	switch ps {
	case ProjectStatusActive, ProjectStatusPaused, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project represents a procurement project whose budget gates order creation.
// Budget consumption is always derived from the orders referencing the
// project, never stored on the row itself.
type Project struct {
	BaseModel
	Name          string        `gorm:"type:varchar(200);not null;index"`
	OwnerID       uuid.UUID     `gorm:"type:uuid;not null;index;column:owner_id"`
	Owner         *User         `gorm:"foreignKey:OwnerID"`
	Budget        float64       `gorm:"type:decimal(15,2);not null;default:0"`
	CostCenter    string        `gorm:"type:varchar(50);column:cost_center"`
	ProjectNumber string        `gorm:"type:varchar(50);unique;index;column:project_number"`
	Area          string        `gorm:"type:varchar(100)"`
	AreaType      string        `gorm:"type:varchar(100);column:area_type"`
	EndDate       *time.Time    `gorm:"type:date;column:end_date"`
	Status        ProjectStatus `gorm:"type:varchar(50);not null;default:'activo';index"`
}

// CatalogKind distinguishes goods catalogs from services catalogs
type CatalogKind string

const (
	KindGoods    CatalogKind = "productos"
	KindServices CatalogKind = "servicios"
)

// IsValid checks if the CatalogKind is a valid enum value
func (k CatalogKind) IsValid() bool {
	switch k {
	case KindGoods, KindServices:
		return true
	}
	return false
}

// Availability values for catalog items
const (
	AvailabilityInStock    = "Disponible"
	AvailabilityOutOfStock = "Agotado"
)

// CatalogEntry represents one supplier company's catalog of a single kind.
// The contract-active flag gates purchasability of every item in the entry,
// independent of stock.
type CatalogEntry struct {
	BaseModel
	Company        string        `gorm:"type:varchar(100);not null;index"`
	CompanyName    string        `gorm:"type:varchar(200);not null;column:company_name"`
	Kind           CatalogKind   `gorm:"type:varchar(50);not null;index"`
	ContractActive bool          `gorm:"not null;default:true;column:contract_active"`
	Items          []CatalogItem `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
}

// CatalogItem represents a purchasable line inside a catalog entry.
// Order lines are matched against items by name/model to determine catalog
// membership.
type CatalogItem struct {
	BaseModel
	EntryID      uuid.UUID `gorm:"type:uuid;not null;index;column:entry_id"`
	Name         string    `gorm:"type:varchar(200);not null;index"`
	Model        string    `gorm:"type:varchar(200);index"`
	Price        float64   `gorm:"type:decimal(15,2);not null;default:0"`
	Stock        int       `gorm:"not null;default:0"`
	Availability string    `gorm:"type:varchar(50);not null;default:'Disponible'"`
}

// OrderFamily separates catalog-backed orders from ad-hoc "special" orders
type OrderFamily string

const (
	FamilyRegular OrderFamily = "regular"
	FamilySpecial OrderFamily = "especial"
)

// IsValid checks if the OrderFamily is a valid enum value
func (f OrderFamily) IsValid() bool {
	switch f {
	case FamilyRegular, FamilySpecial:
		return true
	}
	return false
}

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusPending      OrderStatus = "Pendiente"
	StatusInProgress   OrderStatus = "En proceso"
	StatusModified     OrderStatus = "Modificado"
	StatusProposalSent OrderStatus = "Propuesta enviada"
	StatusResponded    OrderStatus = "Respondido"
	StatusAccepted     OrderStatus = "Aceptado"
	StatusCompleted    OrderStatus = "Completado"
	StatusDenied       OrderStatus = "Denegado"
	StatusArchived     OrderStatus = "Archivado"
)

// IsValid checks if the OrderStatus is one of the nine enumerated values
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusModified, StatusProposalSent,
		StatusResponded, StatusAccepted, StatusCompleted, StatusDenied, StatusArchived:
		return true
	}
	return false
}

// OrderPriority represents the urgency of an order
type OrderPriority string

const (
	PriorityLow    OrderPriority = "baja"
	PriorityMedium OrderPriority = "media"
	PriorityHigh   OrderPriority = "alta"
)

// IsValid checks if the OrderPriority is a valid enum value
func (p OrderPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DenialReason values offered when back-office denies an order manually.
// "Otra razón" requires an accompanying free-text reason.
const (
	DenialNoBudget       = "Falta de presupuesto"
	DenialLegal          = "Denegado por departamento jurídico"
	DenialEconomic       = "Denegado por departamento económico"
	DenialUserCancelled  = "Cancelado por el usuario"
	DenialUnavailable    = "Producto/servicio no disponible"
	DenialPolicy         = "No cumple con las políticas internas"
	DenialIncompleteDocs = "Documentación incompleta"
	DenialOther          = "Otra razón"
	DenialRejectedByUser = "Rechazado por el usuario"
)

// DenialReasons lists the enumerated manual denial reasons in display order
var DenialReasons = []string{
	DenialNoBudget,
	DenialLegal,
	DenialEconomic,
	DenialUserCancelled,
	DenialUnavailable,
	DenialPolicy,
	DenialIncompleteDocs,
	DenialOther,
}

// IsEnumeratedDenialReason reports whether reason is on the fixed list
func IsEnumeratedDenialReason(reason string) bool {
	for _, r := range DenialReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// CompletionNotice is shown to the requester when an order is completed.
// The text is fixed and not configurable.
const CompletionNotice = "Pedido completado. Contacte con administración para coordinar la entrega."

// Order represents a procurement order. Mixed goods-and-services carts are
// split at creation into sibling orders sharing a base order number with a
// kind suffix; each sibling runs the lifecycle independently.
type Order struct {
	BaseModel
	OrderNumber     string          `gorm:"type:varchar(50);unique;index;column:order_number"`
	Family          OrderFamily     `gorm:"type:varchar(50);not null;default:'regular';index"`
	Kind            CatalogKind     `gorm:"type:varchar(50);not null;index"`
	RequesterID     uuid.UUID       `gorm:"type:uuid;not null;index;column:requester_id"`
	Requester       *User           `gorm:"foreignKey:RequesterID"`
	ProjectID       uuid.UUID       `gorm:"type:uuid;not null;index;column:project_id"`
	Project         *Project        `gorm:"foreignKey:ProjectID"`
	Lines           []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Total           float64         `gorm:"type:decimal(15,2);not null;default:0"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	Status          OrderStatus     `gorm:"type:varchar(50);not null;default:'Pendiente';index"`
	Priority        OrderPriority   `gorm:"type:varchar(50);not null;default:'media'"`
	DenialReason    string          `gorm:"type:varchar(500);column:denial_reason"`
	StatusUpdatedAt *time.Time      `gorm:"column:status_updated_at"`
	StatusUpdatedBy string          `gorm:"type:varchar(200);column:status_updated_by"`
	// Role that authored the last transition; drives which side the
	// relay reconciler notifies.
	StatusUpdatedByRole UserRole `gorm:"type:varchar(50);column:status_updated_by_role"`
	IsDeleted       bool            `gorm:"not null;default:false;column:is_deleted;index"`
	Proposal        *Proposal       `gorm:"foreignKey:OrderID"`
	Revisions       []OrderRevision `gorm:"foreignKey:OrderID"`
}

// IsTerminal reports whether the order sits in a terminal-in-practice status.
// Manual override can still reopen these.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusDenied
}

// LineTotal returns the sum of line price x quantity
func (o *Order) LineTotal() float64 {
	var total float64
	for _, l := range o.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// OrderLine represents one ordered item. CatalogItemID is nil for ad-hoc
// (special) lines. Selected and RejectionReason carry the most recent
// selection over the line, whether authored by back-office or by the
// requester's response.
type OrderLine struct {
	BaseModel
	OrderID         uuid.UUID   `gorm:"type:uuid;not null;index;column:order_id"`
	Name            string      `gorm:"type:varchar(200);not null"`
	Model           string      `gorm:"type:varchar(200)"`
	Kind            CatalogKind `gorm:"type:varchar(50);not null"`
	Quantity        int         `gorm:"not null;default:1"`
	UnitPrice       float64     `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	Currency        string      `gorm:"type:varchar(3);not null;default:'EUR'"`
	CatalogItemID   *uuid.UUID  `gorm:"type:uuid;index;column:catalog_item_id"`
	Selected        *bool       `gorm:"column:selected"`
	RejectionReason string      `gorm:"type:varchar(500);column:rejection_reason"`
}

// Proposal represents a back-office-authored set of competing company offers
// attached to a non-catalog order. Immutable once the requester has responded.
type Proposal struct {
	BaseModel
	OrderID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex;column:order_id"`
	TotalBudget    float64             `gorm:"type:decimal(15,2);not null;default:0;column:total_budget"`
	ServiceDetails string              `gorm:"type:jsonb;column:service_details"`
	SubmittedAt    time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP;column:submitted_at"`
	RespondedAt    *time.Time          `gorm:"column:responded_at"`
	Accepted       *bool               `gorm:"column:accepted"`
	ChosenCompany  string              `gorm:"type:varchar(200);column:chosen_company"`
	Candidates     []ProposalCandidate `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE"`
}

// Responded reports whether the requester has already answered the proposal
func (p *Proposal) Responded() bool {
	return p.RespondedAt != nil
}

// ProposalCandidate represents one {company, budget, tariff} offer.
// Position preserves the authoring order for UI highlighting only.
type ProposalCandidate struct {
	BaseModel
	ProposalID uuid.UUID `gorm:"type:uuid;not null;index;column:proposal_id"`
	Company    string    `gorm:"type:varchar(200);not null"`
	Budget     float64   `gorm:"type:decimal(15,2);not null;default:0"`
	Tariff     string    `gorm:"type:varchar(500)"`
	Position   int       `gorm:"not null;default:0"`
}

// Message is the per-(recipient role, order) read/unread projection over an
// order. It is the only per-viewer mutable state in the system; the order
// itself carries no per-viewer fields.
type Message struct {
	BaseModel
	OrderID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_messages_order_role,unique;column:order_id"`
	RecipientRole UserRole   `gorm:"type:varchar(50);not null;index:idx_messages_order_role,unique;column:recipient_role"`
	RecipientID   *uuid.UUID `gorm:"type:uuid;index;column:recipient_id"`
	SenderID      uuid.UUID  `gorm:"type:uuid;column:sender_id"`
	SenderRole    UserRole   `gorm:"type:varchar(50);column:sender_role"`
	UserAction    string     `gorm:"type:varchar(500);column:user_action"`
	Read          bool       `gorm:"column:read;not null;default:false;index"`
	ReadAt        *time.Time `gorm:"column:read_at"`
	ReadBy        string     `gorm:"type:varchar(200);column:read_by"`
}

// OrderRevision is an opaque prior snapshot of an order, appended on every
// edit and never mutated.
type OrderRevision struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index;column:order_id"`
	Snapshot  string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key
func (r *OrderRevision) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NumberSequence backs base order number generation. Sibling sub-orders from
// a split cart share one base number, so the sequence is consumed once per
// checkout.
type NumberSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Year         int       `gorm:"not null;uniqueIndex"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key
func (n *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
