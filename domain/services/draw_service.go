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

// winningSlots is the number of distinct values a from-sold draw needs:
// three exact-match prizes plus the two suffix donors.
const winningSlots = 5

// drawService implements the draw engine. The caller runs Draw inside a
// single unit of work, so the draw record and its winner lists are never
// partially recorded.
type drawService struct {
	periodRepo interfaces.SalesPeriodRepository
	ownedRepo  interfaces.OwnedTicketRepository
	drawRepo   interfaces.DrawResultRepository
	tierRepo   interfaces.PrizeTierRepository
	publisher  interfaces.EventPublisher
}

// NewDrawService creates a draw service bound to one unit of work's
// repositories
func NewDrawService(
	periodRepo interfaces.SalesPeriodRepository,
	ownedRepo interfaces.OwnedTicketRepository,
	drawRepo interfaces.DrawResultRepository,
	tierRepo interfaces.PrizeTierRepository,
	publisher interfaces.EventPublisher,
) interfaces.DrawService {
	return &drawService{
		periodRepo: periodRepo,
		ownedRepo:  ownedRepo,
		drawRepo:   drawRepo,
		tierRepo:   tierRepo,
		publisher:  publisher,
	}
}

// Draw produces the winning-value set for the open period and persists
// it as an immutable draw record, returning the per-tier winner lists
// computed from the same transaction snapshot.
func (s *drawService) Draw(ctx context.Context, mode entities.DrawMode) (*interfaces.DrawOutcome, error) {
	if !mode.IsValid() {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("unknown draw mode %q", mode))
	}

	period, err := s.periodRepo.GetOrCreateOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve open sales period: %w", err)
	}

	result := &entities.DrawResult{
		PeriodID: period.ID,
		Mode:     mode,
		DrawnAt:  time.Now().UTC(),
	}

	switch mode {
	case entities.DrawModeFromSold:
		if err := s.fillFromSold(ctx, period.ID, result); err != nil {
			return nil, err
		}
	case entities.DrawModeFromAll:
		if err := s.fillFromAll(result); err != nil {
			return nil, err
		}
	}

	if err := s.drawRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist draw result: %w", err)
	}

	winners, err := s.collectWinners(ctx, period.ID, result)
	if err != nil {
		return nil, err
	}

	winnerCount := 0
	for _, tw := range winners {
		winnerCount += len(tw.Holders)
	}

	log.WithFields(log.Fields{
		"drawID":      result.ID,
		"periodID":    period.ID,
		"mode":        mode,
		"winnerCount": winnerCount,
	}).Info("Draw completed")

	s.publisher.Publish(events.DrawCompletedEvent{
		DrawResultID: result.ID,
		PeriodID:     period.ID,
		Mode:         mode,
		WinnerCount:  winnerCount,
	})

	return &interfaces.DrawOutcome{Result: result, Winners: winners}, nil
}

// fillFromSold samples five distinct sold codes without replacement.
// Slots 1-3 become the exact-match prizes; slots 4 and 5 only donate
// their last-3 and last-2 digits as independent winning values, so the
// suffix prizes can still match multiple holders.
func (s *drawService) fillFromSold(ctx context.Context, periodID int64, result *entities.DrawResult) error {
	codes, err := s.ownedRepo.SoldCodes(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to load sold codes: %w", err)
	}
	if len(codes) < winningSlots {
		return apperrors.ErrInsufficientSoldTickets.Wrap(
			fmt.Errorf("need %d distinct sold tickets, have %d", winningSlots, len(codes)))
	}

	picks, err := sampleDistinct(codes, winningSlots)
	if err != nil {
		return apperrors.Internal(err)
	}

	result.Prize1 = picks[0]
	result.Prize2 = picks[1]
	result.Prize3 = picks[2]
	result.Last3 = picks[3][len(picks[3])-3:]
	result.Last2 = picks[4][len(picks[4])-2:]
	return nil
}

// fillFromAll generates the winning values independently of the sold
// set: three random 6-digit codes for the exact prizes, the rank-1
// code's last three digits, and an independent random 2-digit suffix.
func (s *drawService) fillFromAll(result *entities.DrawResult) error {
	for _, target := range []*string{&result.Prize1, &result.Prize2, &result.Prize3} {
		code, err := randomCode()
		if err != nil {
			return apperrors.Internal(err)
		}
		*target = code
	}

	result.Last3 = result.Prize1[len(result.Prize1)-3:]

	last2, err := randomTwoDigit()
	if err != nil {
		return apperrors.Internal(err)
	}
	result.Last2 = last2
	return nil
}

// collectWinners builds the per-tier winner lists in claim-priority
// order. A holder already recognized under a higher tier is skipped, so
// the lists reflect the same first-match-wins rule the settlement engine
// enforces.
func (s *drawService) collectWinners(ctx context.Context, periodID int64, result *entities.DrawResult) ([]interfaces.TierWinners, error) {
	tiers, err := s.tierRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prize tiers: %w", err)
	}
	tierByCode := make(map[entities.TierCode]*entities.PrizeTier, len(tiers))
	for _, t := range tiers {
		tierByCode[t.Code] = t
	}

	values := map[entities.TierCode]string{
		entities.TierPrize1: result.Prize1,
		entities.TierPrize2: result.Prize2,
		entities.TierPrize3: result.Prize3,
		entities.TierLast3:  result.Last3,
		entities.TierLast2:  result.Last2,
	}

	seen := make(map[int64]bool)
	winners := make([]interfaces.TierWinners, 0, len(entities.TierPriority))

	for _, code := range entities.TierPriority {
		tier := tierByCode[code]
		if tier == nil {
			return nil, apperrors.ErrIntegrity.Wrap(fmt.Errorf("prize tier %q missing", code))
		}

		var holders []*entities.OwnedTicketDetail
		switch code {
		case entities.TierLast3, entities.TierLast2:
			holders, err = s.ownedRepo.FindBySuffix(ctx, periodID, values[code])
		default:
			holders, err = s.ownedRepo.FindByExactCode(ctx, periodID, values[code])
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find holders for tier %s: %w", code, err)
		}

		fresh := make([]*entities.OwnedTicketDetail, 0, len(holders))
		for _, h := range holders {
			if seen[h.ID] {
				continue
			}
			seen[h.ID] = true
			fresh = append(fresh, h)
		}

		winners = append(winners, interfaces.TierWinners{
			Tier:    code,
			Value:   values[code],
			Reward:  tier.Reward,
			Holders: fresh,
		})
	}

	return winners, nil
}
