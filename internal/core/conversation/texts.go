// internal/core/conversation/texts.go
package conversation

import (
	"fmt"
	"time"

	"trading-signals-bot/internal/core/signals"
)

// Тексты бота. Пользовательский язык - испанский, как в исходном боте.
const (
	textAskAccessCode   = "👋 ¡Hola! Envíame tu código de acceso."
	textCodeAccepted    = "✅ Código correcto. Elige el tipo de activo:"
	textChooseType      = "Elige el tipo de activo:"
	textChooseOTC       = "Selecciona un par OTC:"
	textChooseReal      = "Selecciona un par real:"
	textChooseCrypto    = "Selecciona una criptomoneda:"
	textPreparingSignal = "⏳ Preparando señal..."
	textSelectAgain     = "⚠️ No hay par seleccionado. Elige el tipo de activo:"
)

func textCodeRejected(used, max int) string {
	return fmt.Sprintf("❌ Código incorrecto (%d/%d). Inténtalo de nuevo.", used, max)
}

func textBanned(remaining time.Duration) string {
	return fmt.Sprintf("🚫 Demasiados intentos. Vuelve a intentarlo en %s.", formatRemaining(remaining))
}

func textCooldown(remaining time.Duration) string {
	return fmt.Sprintf("⏳ Próxima señal en %s", formatRemaining(remaining))
}

func textPairSelected(instrument string) string {
	return fmt.Sprintf("✅ Par seleccionado: *%s*\nPulsa para recibir la señal 👇", instrument)
}

// FormatSignal форматирует сигнал для отправки пользователю
func FormatSignal(rec signals.Record) string {
	return fmt.Sprintf(
		"Par: *%s*\n"+
			"Tiempo: *%s*\n"+
			"Presupuesto: *%s*\n"+
			"Dirección: *%s*\n"+
			"Riesgo: *%d%%* (%s)\n"+
			"Éxito estimado: *%d%%*",
		rec.Instrument,
		rec.Timeframe,
		rec.Budget,
		rec.Direction,
		rec.RiskPercent,
		rec.RiskLabel,
		rec.SuccessPercent,
	)
}

// formatRemaining форматирует остаток ожидания как "4m 59s"
func formatRemaining(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
