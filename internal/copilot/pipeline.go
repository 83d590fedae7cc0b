package copilot

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"travelcopilot/internal/ai"
	"travelcopilot/internal/inventory"
	"travelcopilot/internal/models"
	"travelcopilot/internal/service/travel"
	"travelcopilot/internal/worker"
)

// DefaultRecommendDelay is the pause between the assistant reply and the
// follow-up recommendation message.
const DefaultRecommendDelay = time.Second

// Pipeline orchestrates the copilot exchange: a synchronous user-message
// append followed by fire-and-forget reply generation on the scheduler.
// Tasks for one conversation are serialized by the scheduler, so the
// reply and its recommendation never interleave with a later submit.
type Pipeline struct {
	store     *travel.Service
	extractor *IntentExtractor
	synth     *Synthesizer
	searcher  inventory.Searcher
	scheduler worker.Scheduler
	cache     *worker.ConversationCache

	recommendDelay time.Duration
}

// PipelineConfig wires the pipeline collaborators. Cache is optional.
type PipelineConfig struct {
	Store          *travel.Service
	Completer      ai.Completer
	Searcher       inventory.Searcher
	Scheduler      worker.Scheduler
	Cache          *worker.ConversationCache
	RecommendDelay time.Duration
	ReplyTimeout   time.Duration
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	delay := cfg.RecommendDelay
	if delay <= 0 {
		delay = DefaultRecommendDelay
	}
	return &Pipeline{
		store:          cfg.Store,
		extractor:      NewIntentExtractor(cfg.Completer),
		synth:          NewSynthesizer(cfg.Completer, cfg.ReplyTimeout),
		searcher:       cfg.Searcher,
		scheduler:      cfg.Scheduler,
		cache:          cfg.Cache,
		recommendDelay: delay,
	}
}

// SubmitRequest is one incoming copilot message.
type SubmitRequest struct {
	ConversationID *int64
	AgentID        int64
	CustomerID     *int64
	TripID         *int64
	Text           string
	IsVoice        bool
}

// Submit appends the user message and schedules reply generation. The
// user message is persisted before Submit returns, exactly once per call,
// regardless of what the background generation later does. The returned
// id identifies the (possibly new) conversation.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (int64, error) {
	if req.AgentID <= 0 {
		return 0, errors.New("invalid agent id")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return 0, errors.New("message text is required")
	}

	var conversationID int64
	if req.ConversationID != nil && *req.ConversationID > 0 {
		conv, err := p.store.GetConversation(ctx, req.AgentID, *req.ConversationID)
		if err != nil {
			return 0, err
		}
		conversationID = conv.ID
	} else {
		conv, err := p.store.CreateConversation(ctx, req.AgentID, req.CustomerID, req.TripID)
		if err != nil {
			return 0, err
		}
		conversationID = conv.ID
	}

	if _, err := p.store.AppendMessage(ctx, conversationID, models.RoleUser, text, req.IsVoice, nil); err != nil {
		return 0, err
	}

	agentID := req.AgentID
	p.scheduler.Schedule(conversationID, 0, func(taskCtx context.Context) {
		p.generate(taskCtx, agentID, conversationID, text)
	})
	return conversationID, nil
}

// generate runs the reply stages: load context, extract intent, search,
// synthesize, append. Failures here are operational, not the agent's
// fault, so they are logged and the stage gives up quietly.
func (p *Pipeline) generate(ctx context.Context, agentID, conversationID int64, text string) {
	conv, err := p.store.GetConversation(ctx, agentID, conversationID)
	if err != nil {
		log.Printf("copilot: load conversation %d: %v", conversationID, err)
		return
	}
	agent, err := p.store.AgentByID(ctx, agentID)
	if err != nil {
		log.Printf("copilot: load agent %d: %v", agentID, err)
		return
	}
	var customer *models.Customer
	if conv.CustomerID != nil {
		customer, err = p.store.GetCustomer(ctx, agentID, *conv.CustomerID)
		if err != nil {
			log.Printf("copilot: load customer %d: %v", *conv.CustomerID, err)
			customer = nil
		}
	}

	intent := p.extractor.Extract(ctx, text)

	results := &models.SearchResults{}
	if intent.HasSearchIntent {
		found, err := p.searcher.Search(ctx, intent)
		if err != nil {
			log.Printf("copilot: inventory search for conversation %d: %v", conversationID, err)
		} else if found != nil {
			results = found
		}
	}

	reply := p.synth.Reply(ctx, replyInput{
		Agent:    agent,
		Customer: customer,
		History:  conv.Messages,
		Query:    text,
		Results:  results,
	}, intent)

	var metadata *models.MessageMetadata
	if !results.Empty() {
		metadata = &models.MessageMetadata{SearchResults: results}
	}
	if _, err := p.store.AppendMessage(ctx, conversationID, models.RoleAssistant, reply, false, metadata); err != nil {
		log.Printf("copilot: append reply to conversation %d: %v", conversationID, err)
		return
	}

	if intent.HasSearchIntent {
		convCtx := &models.ConversationContext{LastIntent: &intent}
		if !results.Empty() {
			convCtx.LastSearchResults = results
		}
		if err := p.store.SetConversationContext(ctx, conversationID, convCtx); err != nil {
			log.Printf("copilot: store context for conversation %d: %v", conversationID, err)
		}
	}

	p.refreshCache(ctx, agentID, conversationID)

	if !results.Empty() {
		p.scheduler.Schedule(conversationID, p.recommendDelay, func(taskCtx context.Context) {
			p.recommend(taskCtx, agentID, conversationID, results)
		})
	}
}

// recommend appends the delayed recommendation message. A run with no
// recommendable offers is a silent no-op.
func (p *Pipeline) recommend(ctx context.Context, agentID, conversationID int64, results *models.SearchResults) {
	blocks := buildRecommendations(results)
	if len(blocks) == 0 {
		return
	}
	metadata := &models.MessageMetadata{Recommendations: blocks}
	if _, err := p.store.AppendMessage(ctx, conversationID, models.RoleAssistant, recommendationLeadIn, false, metadata); err != nil {
		log.Printf("copilot: append recommendations to conversation %d: %v", conversationID, err)
		return
	}
	p.refreshCache(ctx, agentID, conversationID)
}

func (p *Pipeline) refreshCache(ctx context.Context, agentID, conversationID int64) {
	if p.cache == nil {
		return
	}
	conv, err := p.store.GetConversation(ctx, agentID, conversationID)
	if err != nil {
		log.Printf("copilot: refresh cache for conversation %d: %v", conversationID, err)
		return
	}
	p.cache.Store(conv)
}
