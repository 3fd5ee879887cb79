package service

import (
	"strings"

	"github.com/Jox86/sipp-api/internal/domain"
)

// ProposalService holds the pure rules of the proposal negotiation protocol.
// It carries no state and touches no storage; the order lifecycle service
// persists its results.
type ProposalService struct{}

// NewProposalService creates a new ProposalService
func NewProposalService() *ProposalService {
	return &ProposalService{}
}

// Validate checks a proposal submission. Every candidate needs a non-empty
// company name and a budget value; a proposal needs at least one candidate.
func (s *ProposalService) Validate(req *domain.SendProposalRequest) error {
	if len(req.Candidates) == 0 {
		return ErrIncompleteProposal
	}
	for _, c := range req.Candidates {
		if strings.TrimSpace(c.Company) == "" {
			return ErrIncompleteProposal
		}
		if c.Budget == nil {
			return ErrIncompleteProposal
		}
	}
	return nil
}

// SelectOptimal returns the advisory best-candidate index. Deterministic for
// a given candidate list and order.
func (s *ProposalService) SelectOptimal(candidates []domain.ProposalCandidate) int {
	return domain.OptimalCandidateIndex(candidates)
}
