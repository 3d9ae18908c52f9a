// Package procurement implements the procurement orchestrator: it routes order
// line items to suppliers, tracks outstanding requests, enforces the founder's
// emergency stop, mirrors traffic to the founder and feeds supplier replies back
// into trust scores.
package procurement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/seamonger/procurement/internal/domain"
	"github.com/seamonger/procurement/internal/metrics"
	"github.com/seamonger/procurement/internal/parser"
)

const (
	// stopKeyword is the founder's emergency stop, compared after trim and lowercase.
	stopKeyword = "no"

	// trustIncrement is added to a supplier's score for every reply naming a product.
	trustIncrement = 0.05

	// fallbackProduct labels line items that arrive without a name.
	fallbackProduct = "fish"
)

// Config holds the collaborators and settings for an Orchestrator.
type Config struct {
	Orders       domain.OrderSource
	Messenger    domain.Messenger
	Directory    domain.Directory
	Journal      domain.Journal // optional
	FounderPhone string
	Logger       *zap.Logger // optional
}

// Orchestrator owns the routing table, the active assignments and the cancelled set.
// Every exported operation holds one mutex for its whole duration, so events are
// handled one at a time even when the HTTP server and the poller run concurrently.
type Orchestrator struct {
	orders       domain.OrderSource
	messenger    domain.Messenger
	directory    domain.Directory
	journal      domain.Journal
	founderPhone string
	log          *zap.Logger

	mu          sync.Mutex
	routes      *RoutingTable
	assignments map[string]string   // supplier -> most recent order
	cancelled   map[string]struct{} // suppliers blocked by an emergency stop
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		orders:       cfg.Orders,
		messenger:    cfg.Messenger,
		directory:    cfg.Directory,
		journal:      cfg.Journal,
		founderPhone: cfg.FounderPhone,
		log:          log,
		routes:       NewRoutingTable(),
		assignments:  make(map[string]string),
		cancelled:    make(map[string]struct{}),
	}
}

// IsFounder reports whether sender is the configured founder phone.
// An unset founder phone matches nobody.
func (o *Orchestrator) IsFounder(sender string) bool {
	return o.founderPhone != "" && sender == o.founderPhone
}

// Register routes product keyword to supplierID. Duplicates are ignored.
func (o *Orchestrator) Register(keyword, supplierID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.routes.Register(keyword, supplierID) {
		o.log.Debug("supplier registered",
			zap.String("keyword", domain.NormalizeKey(keyword)),
			zap.String("supplier_id", supplierID))
	}
}

// SelectBestSupplier picks the supplier for productName, or "" when no keyword matches.
func (o *Orchestrator) SelectBestSupplier(ctx context.Context, productName string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selectBestSupplier(ctx, productName)
}

// candidateScore orders candidates by specialty match first, then trust.
type candidateScore struct {
	specialtyMatch int
	trust          float64
}

func (s candidateScore) beats(other candidateScore) bool {
	if s.specialtyMatch != other.specialtyMatch {
		return s.specialtyMatch > other.specialtyMatch
	}
	return s.trust > other.trust
}

func (o *Orchestrator) selectBestSupplier(ctx context.Context, productName string) (string, error) {
	normalized := domain.NormalizeKey(productName)
	candidates := o.routes.Candidates(normalized)

	// Candidates are sorted, and only a strictly better score replaces the
	// current best, so ties go to the smallest identifier.
	var best string
	var bestScore candidateScore
	for i, id := range candidates {
		score, err := o.score(ctx, id, normalized)
		if err != nil {
			return "", err
		}
		if i == 0 || score.beats(bestScore) {
			best, bestScore = id, score
		}
	}
	return best, nil
}

func (o *Orchestrator) score(ctx context.Context, supplierID, normalizedProduct string) (candidateScore, error) {
	s, err := o.directory.Get(ctx, supplierID)
	if errors.Is(err, domain.ErrSupplierNotFound) {
		return candidateScore{}, nil
	}
	if err != nil {
		return candidateScore{}, fmt.Errorf("score supplier %s: %w", supplierID, err)
	}

	score := candidateScore{trust: s.TrustScore}
	if strings.Contains(normalizedProduct, domain.NormalizeKey(s.Specialty)) {
		score.specialtyMatch = 1
	}
	return score, nil
}

// SendToSupplier delivers message to supplierID and mirrors it to the founder.
// It returns false without contacting anyone when the supplier is cancelled.
func (o *Orchestrator) SendToSupplier(ctx context.Context, supplierID, message string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sendToSupplier(ctx, supplierID, message)
}

func (o *Orchestrator) sendToSupplier(ctx context.Context, supplierID, message string) (bool, error) {
	if _, blocked := o.cancelled[supplierID]; blocked {
		metrics.IncBlockedSend()
		o.log.Info("send blocked by emergency stop", zap.String("supplier_id", supplierID))
		return false, nil
	}

	if err := o.messenger.Send(ctx, supplierID, message); err != nil {
		return false, fmt.Errorf("send to supplier %s: %w", supplierID, err)
	}
	metrics.IncMessage(metrics.DirectionOutbound)

	if err := o.mirrorToFounder(ctx, domain.DirectionOutbound, supplierID, message); err != nil {
		return false, err
	}
	return true, nil
}

// MirrorToFounder copies a message to the founder, tagged with its direction.
// It does nothing when no founder phone is configured.
func (o *Orchestrator) MirrorToFounder(ctx context.Context, direction domain.Direction, supplierID, message string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mirrorToFounder(ctx, direction, supplierID, message)
}

func (o *Orchestrator) mirrorToFounder(ctx context.Context, direction domain.Direction, supplierID, message string) error {
	if o.founderPhone == "" {
		return nil
	}
	text := fmt.Sprintf("[%s] %s: %s", direction, supplierID, message)
	if err := o.messenger.Send(ctx, o.founderPhone, text); err != nil {
		return fmt.Errorf("mirror to founder: %w", err)
	}
	metrics.IncMessage(metrics.DirectionMirror)
	return nil
}

// HandleFounderMessage applies the founder's emergency stop. A message reading
// "no" cancels every supplier with an active assignment; anything else is ignored.
func (o *Orchestrator) HandleFounderMessage(ctx context.Context, in domain.IncomingMessage) domain.FounderOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	if domain.NormalizeKey(in.Text) != stopKeyword {
		return domain.FounderOutcome{Status: domain.StatusIgnored}
	}

	// Assignments stay in place; cancellation only blocks future sends.
	for supplierID := range o.assignments {
		o.cancelled[supplierID] = struct{}{}
		o.record(ctx, domain.JournalEntry{
			SupplierID: supplierID,
			Kind:       domain.JournalEmergencyStop,
			OrderID:    o.assignments[supplierID],
			Body:       in.Text,
		})
	}

	count := len(o.cancelled)
	metrics.IncEmergencyStop()
	metrics.SetCancelledSuppliers(count)
	o.log.Warn("emergency stop", zap.Int("cancelled", count))

	return domain.FounderOutcome{Status: domain.StatusCancelled, Count: &count}
}

// HandleSupplierMessage mirrors a supplier reply to the founder, extracts its stock
// signal and, when a product is named, raises the sender's trust score.
// Unknown senders are not an error.
func (o *Orchestrator) HandleSupplierMessage(ctx context.Context, in domain.IncomingMessage) (domain.SupplierOutcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	metrics.IncMessage(metrics.DirectionInbound)
	if err := o.mirrorToFounder(ctx, domain.DirectionInbound, in.From, in.Text); err != nil {
		return domain.SupplierOutcome{}, err
	}

	signal := parser.ParseStockSignal(in.Text)
	if signal.Product != nil {
		if err := o.reward(ctx, in.From); err != nil {
			return domain.SupplierOutcome{}, err
		}
	}

	o.record(ctx, domain.JournalEntry{
		SupplierID: in.From,
		Kind:       domain.JournalReply,
		Body:       in.Text,
		SignalJSON: signalJSON(signal),
	})

	return domain.SupplierOutcome{Status: domain.StatusProcessed, Signal: signal}, nil
}

func (o *Orchestrator) reward(ctx context.Context, supplierID string) error {
	s, err := o.directory.Get(ctx, supplierID)
	if errors.Is(err, domain.ErrSupplierNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load supplier %s: %w", supplierID, err)
	}

	before := s.TrustScore
	s.TrustScore = domain.ClampTrust(s.TrustScore + trustIncrement)
	if err := o.directory.Upsert(ctx, *s); err != nil {
		return fmt.Errorf("update trust for %s: %w", supplierID, err)
	}

	metrics.IncTrustUpdate()
	o.log.Info("trust updated",
		zap.String("supplier_id", supplierID),
		zap.Float64("from", before),
		zap.Float64("to", s.TrustScore))
	return nil
}

// ProcessUnfulfilledOrders asks a supplier for every routable line item of every
// open order. Messages already sent are not rolled back if a later step fails.
func (o *Orchestrator) ProcessUnfulfilledOrders(ctx context.Context) (domain.PollResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	orders, err := o.orders.FetchOrders(ctx)
	if err != nil {
		return domain.PollResult{}, fmt.Errorf("fetch orders: %w", err)
	}

	result := domain.PollResult{Orders: len(orders)}
	for _, order := range orders {
		for _, item := range order.LineItems {
			if item.Name == "" {
				item.Name = fallbackProduct
			}
			supplierID, err := o.selectBestSupplier(ctx, strings.ToLower(item.Name))
			if err != nil {
				return result, err
			}
			if supplierID == "" {
				o.log.Debug("no supplier for line item",
					zap.String("order_id", order.ID),
					zap.String("item", item.Name))
				continue
			}

			o.assignments[supplierID] = order.ID

			msg := fmt.Sprintf("Need %d units of %s for order %s. Can supply today?", item.Quantity, item.Name, order.ID)
			sent, err := o.sendToSupplier(ctx, supplierID, msg)
			if err != nil {
				return result, err
			}
			if !sent {
				continue
			}
			result.MessagesSent++
			o.record(ctx, domain.JournalEntry{
				SupplierID: supplierID,
				Kind:       domain.JournalRequest,
				OrderID:    order.ID,
				Body:       msg,
			})
		}
	}

	o.log.Info("orders processed",
		zap.Int("orders", result.Orders),
		zap.Int("messages_sent", result.MessagesSent))
	return result, nil
}

// Snapshot returns a copy of the routing table, assignments and cancelled set.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	assignments := make(map[string]string, len(o.assignments))
	for k, v := range o.assignments {
		assignments[k] = v
	}
	cancelled := make([]string, 0, len(o.cancelled))
	for id := range o.cancelled {
		cancelled = append(cancelled, id)
	}
	sort.Strings(cancelled)

	return domain.Snapshot{
		Routes:      o.routes.Snapshot(),
		Assignments: assignments,
		Cancelled:   cancelled,
	}
}

// record appends to the journal when one is configured. Failures are logged only.
func (o *Orchestrator) record(ctx context.Context, e domain.JournalEntry) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Append(ctx, e); err != nil {
		o.log.Warn("journal append failed",
			zap.String("supplier_id", e.SupplierID),
			zap.String("kind", string(e.Kind)),
			zap.Error(err))
	}
}

func signalJSON(s domain.StockSignal) string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}
