package service

// Lifecycle transitions for orders: back-office selection, proposal
// negotiation, requester responses, denial, completion, archival and manual
// status overrides. Creation and edits live in order_service.go.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jox86/sipp-api/internal/auth"
	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/mapper"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadForTransition fetches an order and applies the guards shared by every
// transition: the actor must be authenticated and the order must exist and
// not be soft-deleted. Deleted orders permit reads only.
func (s *OrderService) loadForTransition(ctx context.Context, id uuid.UUID) (*domain.Order, *auth.UserContext, error) {
	actor, ok := auth.FromContext(ctx)
	if !ok {
		return nil, nil, ErrUnauthorized
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.IsDeleted {
		return nil, nil, ErrActionNotAllowed
	}
	return order, actor, nil
}

// stampStatus records the transition on the order. Every transition stamps
// who moved the order and when.
func stampStatus(order *domain.Order, status domain.OrderStatus, actor *auth.UserContext) {
	now := time.Now()
	order.Status = status
	order.StatusUpdatedAt = &now
	order.StatusUpdatedBy = actor.DisplayName
	order.StatusUpdatedByRole = actor.Role
}

// SelectItems is the back-office selection over a catalog-backed order:
// Pendiente -> Modificado. Each rejected line requires a rejection reason.
func (s *OrderService) SelectItems(ctx context.Context, id uuid.UUID, req *domain.SelectItemsRequest) (*domain.OrderDTO, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsBackOffice() {
		return nil, ErrPermissionDenied
	}
	if order.Status != domain.StatusPending {
		return nil, ErrActionNotAllowed
	}
	if order.Family != domain.FamilyRegular {
		return nil, ErrActionNotAllowed
	}

	if err := applySelections(order, req.Selections); err != nil {
		return nil, err
	}

	stampStatus(order, domain.StatusModified, actor)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s: selección de artículos enviada", order.OrderNumber))
	s.logStatusChange(order, actor)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// RespondToSelection is the requester's checkbox response over the lines of
// a modified order: Modificado -> Respondido.
func (s *OrderService) RespondToSelection(ctx context.Context, id uuid.UUID, req *domain.RespondSelectionRequest) (*domain.OrderDTO, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.RequesterID != actor.UserID {
		return nil, ErrPermissionDenied
	}
	if order.Status != domain.StatusModified {
		return nil, ErrActionNotAllowed
	}

	if err := applySelections(order, req.Selections); err != nil {
		return nil, err
	}

	stampStatus(order, domain.StatusResponded, actor)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s: el solicitante respondió a la selección", order.OrderNumber))
	s.logStatusChange(order, actor)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// applySelections writes per-line selection marks onto the order's lines.
// A rejected line without a reason is invalid.
func applySelections(order *domain.Order, selections []domain.LineSelectionRequest) error {
	byID := make(map[uuid.UUID]*domain.OrderLine, len(order.Lines))
	for i := range order.Lines {
		byID[order.Lines[i].ID] = &order.Lines[i]
	}

	for _, sel := range selections {
		lineID, err := uuid.Parse(sel.LineID)
		if err != nil {
			return ErrInvalidInput
		}
		line, ok := byID[lineID]
		if !ok {
			return ErrInvalidInput
		}
		if !sel.Selected && strings.TrimSpace(sel.RejectionReason) == "" {
			return ErrInvalidInput
		}
		selected := sel.Selected
		line.Selected = &selected
		line.RejectionReason = sel.RejectionReason
		if sel.Selected {
			line.RejectionReason = ""
		}
	}
	return nil
}

// SendProposal attaches a multi-company proposal to a non-catalog order:
// Pendiente -> Propuesta enviada. Catalog-backed regular service orders are
// routed to Selection instead and never accept a proposal. The order total
// is recomputed from the proposal's total budget.
func (s *OrderService) SendProposal(ctx context.Context, id uuid.UUID, req *domain.SendProposalRequest) (*domain.OrderDTO, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsBackOffice() {
		return nil, ErrPermissionDenied
	}
	if order.Status != domain.StatusPending {
		return nil, ErrActionNotAllowed
	}
	if order.Family == domain.FamilyRegular && order.Kind == domain.KindServices {
		return nil, ErrActionNotAllowed
	}
	if order.Proposal != nil && order.Proposal.Responded() {
		return nil, ErrProposalResponded
	}

	if err := s.proposalSvc.Validate(req); err != nil {
		return nil, err
	}

	proposal := &domain.Proposal{
		OrderID:        order.ID,
		TotalBudget:    req.TotalBudget,
		ServiceDetails: req.ServiceDetails,
		SubmittedAt:    time.Now(),
	}
	for i, c := range req.Candidates {
		proposal.Candidates = append(proposal.Candidates, domain.ProposalCandidate{
			Company:  c.Company,
			Budget:   *c.Budget,
			Tariff:   c.Tariff,
			Position: i,
		})
	}

	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		// Resending before a response replaces the previous proposal
		if order.Proposal != nil {
			if err := tx.Where("proposal_id = ?", order.Proposal.ID).Delete(&domain.ProposalCandidate{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&domain.Proposal{}, "id = ?", order.Proposal.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(proposal).Error; err != nil {
			return fmt.Errorf("failed to create proposal: %w", err)
		}

		now := time.Now()
		return tx.Model(&domain.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"total":                  proposal.TotalBudget,
			"status":                 domain.StatusProposalSent,
			"status_updated_at":      now,
			"status_updated_by":      actor.DisplayName,
			"status_updated_by_role": actor.Role,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	order, err = s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s: propuesta enviada", order.OrderNumber))
	s.logStatusChange(order, actor)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// RespondToProposal records the requester's answer: acceptance moves the
// order to Respondido, rejection forces Denegado with the fixed
// rejected-by-user reason. Accepting a multi-candidate proposal requires an
// explicit candidate index; the computed optimal is advisory only.
func (s *OrderService) RespondToProposal(ctx context.Context, id uuid.UUID, req *domain.RespondProposalRequest) (*domain.OrderDTO, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.RequesterID != actor.UserID {
		return nil, ErrPermissionDenied
	}
	if order.Status != domain.StatusProposalSent {
		return nil, ErrActionNotAllowed
	}
	if order.Proposal == nil {
		return nil, ErrProposalNotFound
	}
	if order.Proposal.Responded() {
		return nil, ErrProposalResponded
	}

	proposal := order.Proposal
	now := time.Now()
	accepted := req.Accept
	proposal.Accepted = &accepted
	proposal.RespondedAt = &now

	var action string
	if req.Accept {
		if len(proposal.Candidates) > 1 && req.CandidateIndex == nil {
			return nil, ErrCandidateRequired
		}
		idx := 0
		if req.CandidateIndex != nil {
			idx = *req.CandidateIndex
		}
		if idx < 0 || idx >= len(proposal.Candidates) {
			return nil, ErrInvalidInput
		}
		proposal.ChosenCompany = proposal.Candidates[idx].Company
		stampStatus(order, domain.StatusResponded, actor)
		action = fmt.Sprintf("Pedido %s: propuesta aceptada (%s)", order.OrderNumber, proposal.ChosenCompany)
	} else {
		stampStatus(order, domain.StatusDenied, actor)
		order.DenialReason = domain.DenialRejectedByUser
		action = fmt.Sprintf("Pedido %s: propuesta rechazada", order.OrderNumber)
	}

	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Save(proposal).Error; err != nil {
			return fmt.Errorf("failed to save proposal response: %w", err)
		}
		return tx.Model(&domain.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"status":                 order.Status,
			"denial_reason":          order.DenialReason,
			"status_updated_at":      order.StatusUpdatedAt,
			"status_updated_by":      order.StatusUpdatedBy,
			"status_updated_by_role": order.StatusUpdatedByRole,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.relaySvc.Notify(ctx, order, actor, action)
	s.logStatusChange(order, actor)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// Deny force-denies an order from any state. The reason must come from the
// enumerated list; "Otra razón" additionally requires a free-text reason,
// which is what gets recorded.
func (s *OrderService) Deny(ctx context.Context, id uuid.UUID, req *domain.DenyOrderRequest) (*domain.OrderDTO, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsBackOffice() {
		return nil, ErrPermissionDenied
	}

	if !domain.IsEnumeratedDenialReason(req.Reason) {
		return nil, ErrInvalidInput
	}
	reason := req.Reason
	if req.Reason == domain.DenialOther {
		if strings.TrimSpace(req.FreeReason) == "" {
			return nil, ErrInvalidInput
		}
		reason = req.FreeReason
	}

	stampStatus(order, domain.StatusDenied, actor)
	order.DenialReason = reason
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s denegado: %s", order.OrderNumber, reason))
	s.logStatusChange(order, actor)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// Complete force-completes an order from any state and returns the fixed
// contact-for-delivery notice alongside it.
func (s *OrderService) Complete(ctx context.Context, id uuid.UUID) (*domain.CompleteOrderResponse, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsBackOffice() {
		return nil, ErrPermissionDenied
	}

	stampStatus(order, domain.StatusCompleted, actor)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s completado", order.OrderNumber))
	s.logStatusChange(order, actor)

	return &domain.CompleteOrderResponse{
		Order:  mapper.ToOrderDTO(order),
		Notice: domain.CompletionNotice,
	}, nil
}

// Archive moves any non-archived order to Archivado. Allowed for
// administration, commercial and manager roles; blocked on deleted orders.
func (s *OrderService) Archive(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCommercial, domain.RoleManager) {
		return nil, ErrPermissionDenied
	}
	if order.Status == domain.StatusArchived {
		return nil, ErrActionNotAllowed
	}

	stampStatus(order, domain.StatusArchived, actor)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s archivado", order.OrderNumber))
	s.logStatusChange(order, actor)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// Unarchive returns an archived order to Pendiente. Always permitted on
// non-deleted archived orders.
func (s *OrderService) Unarchive(ctx context.Context, id uuid.UUID) (*domain.OrderDTO, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusArchived {
		return nil, ErrActionNotAllowed
	}

	stampStatus(order, domain.StatusPending, actor)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s desarchivado", order.OrderNumber))
	s.logStatusChange(order, actor)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

// SetManualStatus sets one of the manual statuses with no automated entry or
// exit (En proceso, Aceptado).
func (s *OrderService) SetManualStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.OrderDTO, error) {
	order, actor, err := s.loadForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsBackOffice() {
		return nil, ErrPermissionDenied
	}
	if status != domain.StatusInProgress && status != domain.StatusAccepted {
		return nil, ErrInvalidInput
	}

	stampStatus(order, status, actor)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.relaySvc.Notify(ctx, order, actor, fmt.Sprintf("Pedido %s: estado cambiado a %s", order.OrderNumber, status))
	s.logStatusChange(order, actor)

	dto := mapper.ToOrderDTO(order)
	return &dto, nil
}

func (s *OrderService) logStatusChange(order *domain.Order, actor *auth.UserContext) {
	s.logger.Info("order status changed",
		zap.String("orderId", order.ID.String()),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("status", string(order.Status)),
		zap.String("by", actor.DisplayName))
}
