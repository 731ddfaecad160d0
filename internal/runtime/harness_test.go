package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// recorder captures every answer event and replies with a scripted signal.
type recorder struct {
	events  []domain.AnswerEvent
	rewinds []domain.RewindEvent
	reply   func(domain.AnswerEvent) (domain.Signal, error)
}

func (r *recorder) Rewind(ctx context.Context, e domain.RewindEvent) error {
	r.rewinds = append(r.rewinds, e)
	return nil
}

func (r *recorder) Handle(ctx context.Context, e domain.AnswerEvent) (domain.Signal, error) {
	r.events = append(r.events, e)
	if r.reply != nil {
		return r.reply(e)
	}
	return domain.Continue, nil
}

type harness struct {
	engine *runtime.Engine
	conv   runtime.Conversation
	rec    *recorder
	store  *memory.Store
}

func newHarness(t *testing.T, entry domain.EntryPoint, d *domain.Dialog, opts ...runtime.Option) *harness {
	t.Helper()
	catalog, err := memory.NewCatalog(map[domain.EntryPoint]*domain.Dialog{entry: d})
	require.NoError(t, err)

	rec := &recorder{}
	reg := registry.NewRegistry()
	reg.Register(entry, rec)

	store := memory.NewStore()
	return &harness{
		engine: runtime.NewEngine(catalog, reg, opts...),
		conv:   runtime.Conversation{Scope: session.NewScope(store, "chat-1"), ChatID: 1, UserID: 7},
		rec:    rec,
		store:  store,
	}
}

func (h *harness) start(t *testing.T, entry domain.EntryPoint) domain.Outcome {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.engine.StartFlow(ctx, h.conv, entry))
	out, err := h.engine.RenderCurrentStep(ctx, h.conv)
	require.NoError(t, err)
	return out
}

func (h *harness) position(t *testing.T) domain.Position {
	t.Helper()
	p, _, err := h.conv.Scope.Position(context.Background())
	require.NoError(t, err)
	return p
}

func (h *harness) trace(t *testing.T) []string {
	t.Helper()
	tr, err := h.conv.Scope.Trace(context.Background())
	require.NoError(t, err)
	return tr
}

// answer replies to whatever the current step waits for: the first option of
// a select item, otherwise a fixed text.
func (h *harness) answer(t *testing.T, d *domain.Dialog) domain.Outcome {
	t.Helper()
	ctx := context.Background()
	it, ok := d.ItemAt(h.position(t))
	require.True(t, ok, "no item under %v", h.position(t))

	var (
		out domain.Outcome
		err error
	)
	if it.Kind == domain.KindSelect {
		out, err = h.engine.ConsumeSelection(ctx, h.conv, it.OptionIDs[0])
	} else {
		out, err = h.engine.ConsumeTextAnswer(ctx, h.conv, "answer")
	}
	require.NoError(t, err)
	return out
}

// singleSelect: one sequence, one select item with two plain options.
func singleSelect() *domain.Dialog {
	return &domain.Dialog{
		ID: 1,
		Sequences: map[int]*domain.Sequence{
			0: {ID: 0, ItemIDs: []int{10}},
		},
		Items: map[int]*domain.Item{
			10: {ID: 10, Text: "question", Kind: domain.KindSelect, OptionIDs: []int{1, 2}},
		},
		Options: map[int]*domain.Option{
			1: {ID: 1, Text: "yes"},
			2: {ID: 2, Text: "no"},
		},
	}
}

// textThenImage: sequence 0 chains into sequence 1, both free text.
func textThenImage() *domain.Dialog {
	return &domain.Dialog{
		ID:    2,
		Trace: true,
		Sequences: map[int]*domain.Sequence{
			0: {ID: 0, ItemIDs: []int{20}, NextSequenceID: intPtr(1)},
			1: {ID: 1, ItemIDs: []int{21}},
		},
		Items: map[int]*domain.Item{
			20: {ID: 20, Text: "ask_name", Kind: domain.KindTextInput},
			21: {ID: 21, Text: "ask_photo", Kind: domain.KindImageUpload},
		},
		Options: map[int]*domain.Option{},
	}
}

// branching: a select item whose first option jumps to sequence 5 although
// more items follow in sequence 0.
func branching() *domain.Dialog {
	return &domain.Dialog{
		ID:    3,
		Trace: true,
		Sequences: map[int]*domain.Sequence{
			0: {ID: 0, ItemIDs: []int{30, 31}, NextSequenceID: intPtr(6)},
			5: {ID: 5, ItemIDs: []int{50, 51}, NextSequenceID: intPtr(6)},
			6: {ID: 6, ItemIDs: []int{60}},
		},
		Items: map[int]*domain.Item{
			30: {ID: 30, Text: "kind", Kind: domain.KindSelect, OptionIDs: []int{3, 4}},
			31: {ID: 31, Text: "details", Kind: domain.KindTextInput},
			50: {ID: 50, Text: "branch_a", Kind: domain.KindTextInput},
			51: {ID: 51, Text: "branch_b", Kind: domain.KindSelect, OptionIDs: []int{7, 8}},
			60: {ID: 60, Text: "photo", Kind: domain.KindImageUpload},
		},
		Options: map[int]*domain.Option{
			3: {ID: 3, Text: "jump", SequenceID: intPtr(5), Row: 1},
			4: {ID: 4, Text: "stay", Row: 0},
			7: {ID: 7, Text: "a", Row: 0},
			8: {ID: 8, Text: "b", Row: 0},
		},
	}
}
