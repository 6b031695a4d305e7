// internal/core/signals/generator.go
package signals

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Направления сигнала
const (
	DirectionUp   = "📈 Arriba"
	DirectionDown = "📉 Abajo"
)

// Веса таймфреймов повторением элементов, как в исходном боте:
// 10 минут x5, 20 минут x3, 30 минут x2, 50 минут x1
var timeframes = []string{
	"10 minutos", "10 minutos", "10 minutos", "10 minutos", "10 minutos",
	"20 minutos", "20 minutos", "20 minutos",
	"30 minutos", "30 minutos",
	"50 minutos",
}

var budgetOptions = []string{"20$", "30$", "40$"}

var directions = []string{DirectionUp, DirectionDown}

// Границы риска и пороги меток
const (
	riskMin = 30
	riskMax = 40

	riskLowMax    = 33
	riskMediumMax = 37
)

// Метки риска
const (
	RiskLow    = "bajo"
	RiskMedium = "medio"
	RiskHigh   = "alto"
)

// Record - сгенерированный сигнал. Никогда не сохраняется.
type Record struct {
	ID             string
	Instrument     string
	Timeframe      string
	Direction      string
	Budget         string
	RiskPercent    int
	SuccessPercent int
	RiskLabel      string
	CreatedAt      time.Time
}

// Generator - генератор синтетических сигналов
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator создает генератор со случайным зерном
func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewGeneratorWithSource создает генератор с заданным источником случайности
func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{
		rnd: rand.New(src),
	}
}

// Generate создает сигнал для заданного инструмента
func (g *Generator) Generate(instrument string, now time.Time) Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	risk := riskMin + g.rnd.Intn(riskMax-riskMin+1)

	return Record{
		ID:             uuid.NewString(),
		Instrument:     instrument,
		Timeframe:      timeframes[g.rnd.Intn(len(timeframes))],
		Direction:      directions[g.rnd.Intn(len(directions))],
		Budget:         budgetOptions[g.rnd.Intn(len(budgetOptions))],
		RiskPercent:    risk,
		SuccessPercent: 100 - risk,
		RiskLabel:      riskLabel(risk),
		CreatedAt:      now,
	}
}

// GenerateFrom выбирает случайный инструмент из списка и создает сигнал
func (g *Generator) GenerateFrom(instruments []string, now time.Time) Record {
	g.mu.Lock()
	instrument := instruments[g.rnd.Intn(len(instruments))]
	g.mu.Unlock()

	return g.Generate(instrument, now)
}

// riskLabel делит диапазон риска на три полосы фиксированными порогами
func riskLabel(risk int) string {
	switch {
	case risk <= riskLowMax:
		return RiskLow
	case risk <= riskMediumMax:
		return RiskMedium
	default:
		return RiskHigh
	}
}
