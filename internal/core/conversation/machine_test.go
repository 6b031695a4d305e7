package conversation

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"trading-signals-bot/internal/core/access"
	"trading-signals-bot/internal/core/catalog"
	"trading-signals-bot/internal/core/cooldown"
	"trading-signals-bot/internal/core/signals"
)

// ======================
// ЗАГЛУШКИ
// ======================

type sentText struct {
	chatID int64
	text   string
}

type sentMenu struct {
	chatID int64
	text   string
	rows   [][]Choice
}

type sentEdit struct {
	chatID    int64
	messageID int
	text      string
	rows      [][]Choice
}

type sentAnswer struct {
	callbackID string
	text       string
	alert      bool
}

type fakeGateway struct {
	texts   []sentText
	menus   []sentMenu
	edits   []sentEdit
	answers []sentAnswer
}

func (g *fakeGateway) SendText(ctx context.Context, chatID int64, text string) error {
	g.texts = append(g.texts, sentText{chatID, text})
	return nil
}

func (g *fakeGateway) SendMenu(ctx context.Context, chatID int64, text string, rows [][]Choice) error {
	g.menus = append(g.menus, sentMenu{chatID, text, rows})
	return nil
}

func (g *fakeGateway) EditMenu(ctx context.Context, chatID int64, messageID int, text string, rows [][]Choice) error {
	g.edits = append(g.edits, sentEdit{chatID, messageID, text, rows})
	return nil
}

func (g *fakeGateway) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	g.answers = append(g.answers, sentAnswer{callbackID, text, alert})
	return nil
}

func (g *fakeGateway) totalEmissions() int {
	return len(g.texts) + len(g.menus) + len(g.edits) + len(g.answers)
}

type mapStateStore struct {
	sessions map[int64]Session
}

func (s *mapStateStore) Get(userID int64) Session      { return s.sessions[userID] }
func (s *mapStateStore) Set(userID int64, sess Session) { s.sessions[userID] = sess }

type mapSelectionStore struct {
	selections map[int64]string
}

func (s *mapSelectionStore) Upsert(ctx context.Context, userID int64, instrument string) error {
	s.selections[userID] = instrument
	return nil
}

func (s *mapSelectionStore) Get(ctx context.Context, userID int64) (string, bool, error) {
	instrument, ok := s.selections[userID]
	return instrument, ok, nil
}

func (s *mapSelectionStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(s.selections))
	for id := range s.selections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type mapAttemptStore struct {
	records map[int64]access.AttemptRecord
}

func (s *mapAttemptStore) Get(ctx context.Context, userID int64) (access.AttemptRecord, error) {
	return s.records[userID], nil
}

func (s *mapAttemptStore) Put(ctx context.Context, userID int64, rec access.AttemptRecord) error {
	s.records[userID] = rec
	return nil
}

func (s *mapAttemptStore) Clear(ctx context.Context, userID int64) error {
	delete(s.records, userID)
	return nil
}

type mapCooldownStore struct {
	availableAt map[int64]time.Time
}

func (s *mapCooldownStore) Get(ctx context.Context, userID int64) (time.Time, error) {
	return s.availableAt[userID], nil
}

func (s *mapCooldownStore) Set(ctx context.Context, userID int64, at time.Time) error {
	s.availableAt[userID] = at
	return nil
}

// ======================
// СБОРКА АВТОМАТА
// ======================

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time            { return c.current }
func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

type testEnv struct {
	machine    *Machine
	gateway    *fakeGateway
	states     *mapStateStore
	selections *mapSelectionStore
	clock      *testClock
}

func newTestEnv() *testEnv {
	gateway := &fakeGateway{}
	states := &mapStateStore{sessions: make(map[int64]Session)}
	selections := &mapSelectionStore{selections: make(map[int64]string)}
	clock := &testClock{current: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}

	accessGate := access.NewGate("1234", 3, 5*time.Minute, &mapAttemptStore{records: make(map[int64]access.AttemptRecord)})
	cooldownGate := cooldown.NewGate(5*time.Minute, &mapCooldownStore{availableAt: make(map[int64]time.Time)})
	generator := signals.NewGeneratorWithSource(rand.NewSource(42))

	machine := NewMachine(states, selections, accessGate, cooldownGate, generator, catalog.New(), gateway)
	machine.SetNowFunc(clock.now)

	return &testEnv{
		machine:    machine,
		gateway:    gateway,
		states:     states,
		selections: selections,
		clock:      clock,
	}
}

func (e *testEnv) state(userID int64) State {
	return e.states.Get(userID).State
}

// authenticate доводит пользователя до меню категорий
func (e *testEnv) authenticate(t *testing.T, userID, chatID int64) {
	t.Helper()
	ctx := context.Background()
	e.machine.HandleText(ctx, userID, chatID, "/start")
	e.machine.HandleText(ctx, userID, chatID, "1234")
	if e.state(userID) != StateAwaitingAssetClass {
		t.Fatalf("expected AwaitingAssetClass after code, got %q", e.state(userID))
	}
}

// selectPair доводит пользователя до готовности запросить сигнал
func (e *testEnv) selectPair(t *testing.T, userID, chatID int64, categoryData, pair string) {
	t.Helper()
	ctx := context.Background()
	e.machine.HandleCallback(ctx, userID, chatID, 10, "cb1", categoryData)
	e.machine.HandleCallback(ctx, userID, chatID, 10, "cb2", "pair:"+pair)
	if e.state(userID) != StateReadyForSignal {
		t.Fatalf("expected ReadyForSignal after selection, got %q", e.state(userID))
	}
}

// ======================
// ТЕСТЫ
// ======================

func TestStartPromptsForAccessCode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.machine.HandleText(ctx, 1, 100, "/start")

	if env.state(1) != StateAwaitingAccessCode {
		t.Fatalf("expected AwaitingAccessCode, got %q", env.state(1))
	}
	if len(env.gateway.texts) != 1 || env.gateway.texts[0].text != textAskAccessCode {
		t.Fatalf("expected access code prompt, got %+v", env.gateway.texts)
	}
}

func TestFirstContactWithoutStartAlsoPrompts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.machine.HandleText(ctx, 1, 100, "hola")

	if env.state(1) != StateAwaitingAccessCode {
		t.Fatalf("expected AwaitingAccessCode, got %q", env.state(1))
	}
	if len(env.gateway.texts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(env.gateway.texts))
	}
}

func TestCorrectCodeOpensCategoryMenu(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)

	if len(env.gateway.menus) != 1 {
		t.Fatalf("expected one menu, got %d", len(env.gateway.menus))
	}
	menu := env.gateway.menus[0]
	if menu.text != textCodeAccepted {
		t.Fatalf("unexpected menu text %q", menu.text)
	}
	if len(menu.rows) != 3 {
		t.Fatalf("expected 3 category rows, got %d", len(menu.rows))
	}
}

func TestWrongCodeKeepsAwaitingState(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.machine.HandleText(ctx, 1, 100, "/start")
	env.machine.HandleText(ctx, 1, 100, "0000")

	if env.state(1) != StateAwaitingAccessCode {
		t.Fatalf("expected AwaitingAccessCode after wrong code, got %q", env.state(1))
	}
	last := env.gateway.texts[len(env.gateway.texts)-1]
	if last.text != textCodeRejected(1, 3) {
		t.Fatalf("unexpected rejection text %q", last.text)
	}
}

func TestThreeWrongCodesBanThenAcceptAfterExpiry(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.machine.HandleText(ctx, 1, 100, "/start")
	env.machine.HandleText(ctx, 1, 100, "a")
	env.machine.HandleText(ctx, 1, 100, "b")
	env.machine.HandleText(ctx, 1, 100, "c")

	last := env.gateway.texts[len(env.gateway.texts)-1]
	if last.text != textBanned(5*time.Minute) {
		t.Fatalf("expected ban message, got %q", last.text)
	}

	// Правильный код во время бана не проходит
	env.machine.HandleText(ctx, 1, 100, "1234")
	if env.state(1) != StateAwaitingAccessCode {
		t.Fatalf("ban must keep AwaitingAccessCode, got %q", env.state(1))
	}

	// После истечения бана код принимается
	env.clock.advance(5 * time.Minute)
	env.machine.HandleText(ctx, 1, 100, "1234")
	if env.state(1) != StateAwaitingAssetClass {
		t.Fatalf("expected AwaitingAssetClass after ban expiry, got %q", env.state(1))
	}
}

func TestUnrecognizedInputIsSilentlyIgnored(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	ctx := context.Background()

	before := env.gateway.totalEmissions()
	stateBefore := env.state(1)

	env.machine.HandleText(ctx, 1, 100, "random text")
	env.machine.HandleCallback(ctx, 1, 100, 10, "cb", "pair:EUR/USD OTC") // пара вне состояния выбора
	env.machine.HandleCallback(ctx, 1, 100, 10, "cb", "get_signal")       // сигнал до выбора пары

	if env.state(1) != stateBefore {
		t.Fatalf("state changed on unrecognized input: %q", env.state(1))
	}
	if env.gateway.totalEmissions() != before {
		t.Fatalf("unrecognized input must not emit messages")
	}
}

func TestCategorySelectionShowsInstruments(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	ctx := context.Background()

	env.machine.HandleCallback(ctx, 1, 100, 10, "cb1", "type_otc")

	if env.state(1) != StateAwaitingInstrument {
		t.Fatalf("expected AwaitingInstrument, got %q", env.state(1))
	}
	if len(env.gateway.edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(env.gateway.edits))
	}
	edit := env.gateway.edits[0]
	if edit.text != textChooseOTC {
		t.Fatalf("unexpected prompt %q", edit.text)
	}
	// 7 пар OTC плюс кнопка возврата
	if len(edit.rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(edit.rows))
	}
	if len(env.gateway.answers) != 1 {
		t.Fatalf("callback must be answered")
	}
}

func TestInstrumentMustBelongToShownCategory(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	ctx := context.Background()

	env.machine.HandleCallback(ctx, 1, 100, 10, "cb1", "type_otc")
	before := env.gateway.totalEmissions()

	// Криптопара при открытом меню OTC
	env.machine.HandleCallback(ctx, 1, 100, 10, "cb2", "pair:Bitcoin OTC")

	if env.state(1) != StateAwaitingInstrument {
		t.Fatalf("foreign instrument must not change state, got %q", env.state(1))
	}
	if _, ok := env.selections.selections[1]; ok {
		t.Fatalf("foreign instrument must not be stored")
	}
	if env.gateway.totalEmissions() != before {
		t.Fatalf("foreign instrument must not emit messages")
	}
}

func TestPairSelectionStoresChoice(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	env.selectPair(t, 1, 100, "type_otc", "EUR/USD OTC")

	if env.selections.selections[1] != "EUR/USD OTC" {
		t.Fatalf("unexpected stored selection %q", env.selections.selections[1])
	}
	edit := env.gateway.edits[len(env.gateway.edits)-1]
	if edit.text != textPairSelected("EUR/USD OTC") {
		t.Fatalf("unexpected confirmation %q", edit.text)
	}
	if len(edit.rows) != 2 {
		t.Fatalf("expected signal and back buttons, got %d rows", len(edit.rows))
	}
}

func TestReselectionOverwritesPreviousChoice(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	env.selectPair(t, 1, 100, "type_otc", "EUR/USD OTC")
	ctx := context.Background()

	// Назад к категориям и выбор из другой категории
	env.machine.HandleCallback(ctx, 1, 100, 10, "cb3", "back_to_types")
	if env.state(1) != StateAwaitingAssetClass {
		t.Fatalf("expected AwaitingAssetClass after back, got %q", env.state(1))
	}

	env.selectPair(t, 1, 100, "type_crypto", "Bitcoin OTC")

	if env.selections.selections[1] != "Bitcoin OTC" {
		t.Fatalf("expected overwrite, got %q", env.selections.selections[1])
	}
}

func TestBackFromInstrumentsReturnsToCategories(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	ctx := context.Background()

	env.machine.HandleCallback(ctx, 1, 100, 10, "cb1", "type_real")
	env.machine.HandleCallback(ctx, 1, 100, 10, "cb2", "back_to_types")

	if env.state(1) != StateAwaitingAssetClass {
		t.Fatalf("expected AwaitingAssetClass, got %q", env.state(1))
	}
	edit := env.gateway.edits[len(env.gateway.edits)-1]
	if edit.text != textChooseType || len(edit.rows) != 3 {
		t.Fatalf("expected category menu, got %q with %d rows", edit.text, len(edit.rows))
	}
}

func TestSignalRequestSendsSignal(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	env.selectPair(t, 1, 100, "type_otc", "Gold OTC")
	ctx := context.Background()

	env.machine.HandleCallback(ctx, 1, 100, 10, "cb3", "get_signal")

	// Промежуточное сообщение перед сигналом
	last := env.gateway.texts[len(env.gateway.texts)-1]
	if last.text != textPreparingSignal {
		t.Fatalf("expected preparing message, got %q", last.text)
	}

	menu := env.gateway.menus[len(env.gateway.menus)-1]
	if len(menu.rows) != 1 {
		t.Fatalf("expected signal-only keyboard, got %d rows", len(menu.rows))
	}
	// Сигнал сгенерирован по выбранной паре
	if want := "Par: *Gold OTC*"; len(menu.text) < len(want) || menu.text[:len(want)] != want {
		t.Fatalf("signal must use the stored pair, got %q", menu.text)
	}

	// Состояние остается ReadyForSignal, повтор возможен после кулдауна
	if env.state(1) != StateReadyForSignal {
		t.Fatalf("expected ReadyForSignal after signal, got %q", env.state(1))
	}
}

func TestRepeatedSignalRequestHitsCooldown(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	env.selectPair(t, 1, 100, "type_otc", "Gold OTC")
	ctx := context.Background()

	env.machine.HandleCallback(ctx, 1, 100, 10, "cb3", "get_signal")
	menusBefore := len(env.gateway.menus)

	env.clock.advance(2 * time.Minute)
	env.machine.HandleCallback(ctx, 1, 100, 10, "cb4", "get_signal")

	// Отказ приходит alert-ответом на callback, без нового сигнала
	last := env.gateway.answers[len(env.gateway.answers)-1]
	if !last.alert {
		t.Fatalf("cooldown response must be an alert")
	}
	if last.text != textCooldown(3*time.Minute) {
		t.Fatalf("unexpected cooldown text %q", last.text)
	}
	if len(env.gateway.menus) != menusBefore {
		t.Fatalf("cooldown must not produce a signal")
	}

	// После истечения кулдауна сигнал снова доступен
	env.clock.advance(3 * time.Minute)
	env.machine.HandleCallback(ctx, 1, 100, 10, "cb5", "get_signal")
	if len(env.gateway.menus) != menusBefore+1 {
		t.Fatalf("expected a new signal after cooldown expiry")
	}
}

func TestSignalWithoutStoredSelectionReprompts(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	env.selectPair(t, 1, 100, "type_otc", "Gold OTC")
	ctx := context.Background()

	// Выбор пропал (например, хранилище очищено извне)
	delete(env.selections.selections, 1)

	env.machine.HandleCallback(ctx, 1, 100, 10, "cb3", "get_signal")

	if env.state(1) != StateAwaitingAssetClass {
		t.Fatalf("expected reprompt to AwaitingAssetClass, got %q", env.state(1))
	}
	menu := env.gateway.menus[len(env.gateway.menus)-1]
	if menu.text != textSelectAgain || len(menu.rows) != 3 {
		t.Fatalf("expected category reprompt, got %q with %d rows", menu.text, len(menu.rows))
	}
}

func TestStartRestartsAuthenticatedDialog(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	env.selectPair(t, 1, 100, "type_otc", "Gold OTC")
	ctx := context.Background()

	env.machine.HandleText(ctx, 1, 100, "/start")

	if env.state(1) != StateAwaitingAccessCode {
		t.Fatalf("/start must restart the dialog, got %q", env.state(1))
	}
}

func TestUsersHaveIndependentDialogs(t *testing.T) {
	env := newTestEnv()
	env.authenticate(t, 1, 100)
	env.selectPair(t, 1, 100, "type_otc", "Gold OTC")
	ctx := context.Background()

	env.machine.HandleText(ctx, 2, 200, "/start")

	if env.state(1) != StateReadyForSignal {
		t.Fatalf("user 2 must not affect user 1, got %q", env.state(1))
	}
	if env.state(2) != StateAwaitingAccessCode {
		t.Fatalf("expected AwaitingAccessCode for user 2, got %q", env.state(2))
	}
}

func TestFormatSignalFields(t *testing.T) {
	rec := signals.Record{
		Instrument:     "EUR/USD OTC",
		Timeframe:      "10 minutos",
		Budget:         "20$",
		Direction:      signals.DirectionUp,
		RiskPercent:    32,
		SuccessPercent: 68,
		RiskLabel:      signals.RiskLow,
	}

	got := FormatSignal(rec)
	want := "Par: *EUR/USD OTC*\n" +
		"Tiempo: *10 minutos*\n" +
		"Presupuesto: *20$*\n" +
		"Dirección: *📈 Arriba*\n" +
		"Riesgo: *32%* (bajo)\n" +
		"Éxito estimado: *68%*"

	if got != want {
		t.Fatalf("unexpected signal text:\n%s", got)
	}
}
