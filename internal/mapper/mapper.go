package mapper

import (
	"github.com/Jox86/sipp-api/internal/domain"
)

// ToProjectDTO converts Project to ProjectDTO. Committed budget is derived
// from orders, so the caller supplies it.
func ToProjectDTO(project *domain.Project, committed float64) domain.ProjectDTO {
	remaining := project.Budget - committed
	if remaining < 0 {
		remaining = 0
	}
	dto := domain.ProjectDTO{
		ID:              project.ID,
		Name:            project.Name,
		OwnerID:         project.OwnerID,
		Budget:          project.Budget,
		CommittedBudget: committed,
		RemainingBudget: remaining,
		CostCenter:      project.CostCenter,
		ProjectNumber:   project.ProjectNumber,
		Area:            project.Area,
		AreaType:        project.AreaType,
		Status:          project.Status,
		CreatedAt:       project.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       project.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if project.Owner != nil {
		dto.OwnerName = project.Owner.DisplayName
	}
	if project.EndDate != nil {
		dto.EndDate = project.EndDate.Format("2006-01-02")
	}
	return dto
}

// ToCatalogEntryDTO converts CatalogEntry to CatalogEntryDTO
func ToCatalogEntryDTO(entry *domain.CatalogEntry) domain.CatalogEntryDTO {
	items := make([]domain.CatalogItemDTO, 0, len(entry.Items))
	for i := range entry.Items {
		items = append(items, ToCatalogItemDTO(&entry.Items[i]))
	}
	return domain.CatalogEntryDTO{
		ID:             entry.ID,
		Company:        entry.Company,
		CompanyName:    entry.CompanyName,
		Kind:           entry.Kind,
		ContractActive: entry.ContractActive,
		Items:          items,
		CreatedAt:      entry.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      entry.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToCatalogItemDTO converts CatalogItem to CatalogItemDTO
func ToCatalogItemDTO(item *domain.CatalogItem) domain.CatalogItemDTO {
	return domain.CatalogItemDTO{
		ID:           item.ID,
		Name:         item.Name,
		Model:        item.Model,
		Price:        item.Price,
		Stock:        item.Stock,
		Availability: item.Availability,
	}
}

// ToOrderLineDTO converts OrderLine to OrderLineDTO
func ToOrderLineDTO(line *domain.OrderLine) domain.OrderLineDTO {
	return domain.OrderLineDTO{
		ID:              line.ID,
		Name:            line.Name,
		Model:           line.Model,
		Kind:            line.Kind,
		Quantity:        line.Quantity,
		UnitPrice:       line.UnitPrice,
		Currency:        line.Currency,
		CatalogItemID:   line.CatalogItemID,
		Selected:        line.Selected,
		RejectionReason: line.RejectionReason,
	}
}

// ToOrderDTO converts Order to OrderDTO
func ToOrderDTO(order *domain.Order) domain.OrderDTO {
	lines := make([]domain.OrderLineDTO, 0, len(order.Lines))
	for i := range order.Lines {
		lines = append(lines, ToOrderLineDTO(&order.Lines[i]))
	}
	dto := domain.OrderDTO{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		Family:       order.Family,
		Kind:         order.Kind,
		RequesterID:  order.RequesterID,
		ProjectID:    order.ProjectID,
		Lines:        lines,
		Total:        order.Total,
		Currency:     order.Currency,
		Status:       order.Status,
		Priority:     order.Priority,
		DenialReason: order.DenialReason,
		IsDeleted:    order.IsDeleted,
		CreatedAt:    order.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    order.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if order.Requester != nil {
		dto.RequesterName = order.Requester.DisplayName
	}
	if order.StatusUpdatedAt != nil {
		dto.StatusUpdatedAt = order.StatusUpdatedAt.Format("2006-01-02T15:04:05Z")
	}
	dto.StatusUpdatedBy = order.StatusUpdatedBy
	if order.Proposal != nil {
		p := ToProposalDTO(order.Proposal)
		dto.Proposal = &p
	}
	return dto
}

// ToProposalDTO converts Proposal to ProposalDTO. The optimal index is
// recomputed on every mapping; it is advisory display state, never stored.
func ToProposalDTO(proposal *domain.Proposal) domain.ProposalDTO {
	candidates := make([]domain.ProposalCandidateDTO, 0, len(proposal.Candidates))
	for i := range proposal.Candidates {
		c := &proposal.Candidates[i]
		candidates = append(candidates, domain.ProposalCandidateDTO{
			ID:       c.ID,
			Company:  c.Company,
			Budget:   c.Budget,
			Tariff:   c.Tariff,
			Position: c.Position,
		})
	}
	dto := domain.ProposalDTO{
		ID:             proposal.ID,
		OrderID:        proposal.OrderID,
		TotalBudget:    proposal.TotalBudget,
		ServiceDetails: proposal.ServiceDetails,
		SubmittedAt:    proposal.SubmittedAt.Format("2006-01-02T15:04:05Z"),
		Accepted:       proposal.Accepted,
		ChosenCompany:  proposal.ChosenCompany,
		Candidates:     candidates,
		OptimalIndex:   domain.OptimalCandidateIndex(proposal.Candidates),
	}
	if proposal.RespondedAt != nil {
		dto.RespondedAt = proposal.RespondedAt.Format("2006-01-02T15:04:05Z")
	}
	return dto
}

// ToMessageDTO converts Message to MessageDTO
func ToMessageDTO(msg *domain.Message) domain.MessageDTO {
	dto := domain.MessageDTO{
		ID:            msg.ID,
		OrderID:       msg.OrderID,
		RecipientRole: msg.RecipientRole,
		RecipientID:   msg.RecipientID,
		SenderID:      msg.SenderID,
		SenderRole:    msg.SenderRole,
		UserAction:    msg.UserAction,
		Read:          msg.Read,
		ReadBy:        msg.ReadBy,
		Timestamp:     msg.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if msg.ReadAt != nil {
		dto.ReadAt = msg.ReadAt.Format("2006-01-02T15:04:05Z")
	}
	return dto
}
