package services

import (
	"context"
	"fmt"
	"time"

	"lotto/domain/apperrors"
	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// settlementService implements the at-most-once prize settlement.
// Lock order matches the purchase engine: ownership row first, then the
// user's balance row.
type settlementService struct {
	ownedRepo  interfaces.OwnedTicketRepository
	drawRepo   interfaces.DrawResultRepository
	tierRepo   interfaces.PrizeTierRepository
	awardRepo  interfaces.PrizeAwardRepository
	userRepo   interfaces.UserRepository
	ledgerRepo interfaces.LedgerEntryRepository
	publisher  interfaces.EventPublisher
}

// NewSettlementService creates a settlement service bound to one unit of
// work's repositories
func NewSettlementService(
	ownedRepo interfaces.OwnedTicketRepository,
	drawRepo interfaces.DrawResultRepository,
	tierRepo interfaces.PrizeTierRepository,
	awardRepo interfaces.PrizeAwardRepository,
	userRepo interfaces.UserRepository,
	ledgerRepo interfaces.LedgerEntryRepository,
	publisher interfaces.EventPublisher,
) interfaces.SettlementService {
	return &settlementService{
		ownedRepo:  ownedRepo,
		drawRepo:   drawRepo,
		tierRepo:   tierRepo,
		awardRepo:  awardRepo,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
	}
}

// LatestDraw returns the authoritative draw record, optionally scoped to
// a period
func (s *settlementService) LatestDraw(ctx context.Context, periodID *int64) (*entities.DrawResult, error) {
	var (
		draw *entities.DrawResult
		err  error
	)
	if periodID != nil {
		draw, err = s.drawRepo.GetLatestForPeriod(ctx, *periodID)
	} else {
		draw, err = s.drawRepo.GetLatest(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw result: %w", err)
	}
	if draw == nil {
		return nil, apperrors.ErrNoDrawYet
	}
	return draw, nil
}

// Claim settles a held ticket against the prevailing draw record, credits
// the reward exactly once, and closes the ticket's lifecycle. Concurrent
// claims on the same ticket yield exactly one success.
func (s *settlementService) Claim(ctx context.Context, userID int64, code string, periodID *int64) (*interfaces.ClaimResult, error) {
	if userID <= 0 {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("missing account id"))
	}
	if !entities.IsValidCode(code) {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("malformed ticket code %q", code))
	}

	draw, err := s.LatestDraw(ctx, periodID)
	if err != nil {
		return nil, err
	}

	owned, err := s.ownedRepo.GetByUserAndCodeForUpdate(ctx, userID, draw.PeriodID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ownership record: %w", err)
	}
	if owned == nil {
		return nil, apperrors.ErrTicketNotOwned
	}
	if owned.IsClaimed() {
		return nil, apperrors.ErrAlreadyClaimed
	}

	tierCode, matched := draw.MatchTier(owned.TicketCode)
	if !matched {
		return nil, apperrors.ErrNotAWinner
	}

	tier, err := s.tierRepo.GetByCode(ctx, tierCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load prize tier: %w", err)
	}
	if tier == nil {
		// Reference data missing is fatal for this request, never
		// silently ignored.
		return nil, apperrors.ErrIntegrity.Wrap(fmt.Errorf("prize tier %q missing", tierCode))
	}

	holder, err := s.userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock holder: %w", err)
	}
	if holder == nil {
		return nil, apperrors.ErrIntegrity.Wrap(fmt.Errorf("owner account %d missing", userID))
	}

	// The award insert is idempotent on the ownership record; a lost
	// race surfaces as ALREADY_CLAIMED instead of a second credit.
	inserted, err := s.awardRepo.Create(ctx, &entities.PrizeAward{
		OwnedTicketID: owned.ID,
		PrizeTierID:   tier.ID,
		DrawResultID:  draw.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record prize award: %w", err)
	}
	if !inserted {
		return nil, apperrors.ErrAlreadyClaimed
	}

	newBalance := holder.Balance.Add(tier.Reward)
	if err := s.userRepo.UpdateBalance(ctx, holder.ID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to credit reward: %w", err)
	}

	if err := s.ownedRepo.MarkClaimed(ctx, owned.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to mark ticket claimed: %w", err)
	}

	if err := s.ledgerRepo.Record(ctx, &entities.LedgerEntry{
		UserID:        holder.ID,
		EntryType:     entities.LedgerEntryPrizeClaim,
		Amount:        tier.Reward,
		BalanceBefore: holder.Balance,
		BalanceAfter:  newBalance,
		Metadata: map[string]interface{}{
			"owned_ticket_id": owned.ID,
			"ticket_code":     owned.TicketCode,
			"draw_result_id":  draw.ID,
			"prize_tier":      string(tierCode),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":     holder.ID,
		"ticketCode": owned.TicketCode,
		"tier":       tierCode,
		"reward":     tier.Reward,
	}).Info("Prize claimed")

	s.publisher.Publish(events.PrizeClaimedEvent{
		UserID:        holder.ID,
		OwnedTicketID: owned.ID,
		TicketCode:    owned.TicketCode,
		Tier:          tierCode,
		Reward:        tier.Reward,
	})
	s.publisher.Publish(events.BalanceChangeEvent{
		UserID:       holder.ID,
		OldBalance:   holder.Balance,
		NewBalance:   newBalance,
		ChangeAmount: tier.Reward,
		EntryType:    entities.LedgerEntryPrizeClaim,
	})

	return &interfaces.ClaimResult{
		Tier:       tierCode,
		TierName:   tier.Name,
		Reward:     tier.Reward,
		NewBalance: newBalance,
		TicketCode: owned.TicketCode,
	}, nil
}
