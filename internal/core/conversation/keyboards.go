// internal/core/conversation/keyboards.go
package conversation

import "trading-signals-bot/internal/core/catalog"

// Choice - одна кнопка меню: подпись и callback-данные.
// Транспортная разметка (inline keyboard) собирается на стороне шлюза.
type Choice struct {
	Label string
	Data  string
}

// Callback-данные кнопок. Совпадают с исходным ботом.
const (
	callbackTypeOTC    = "type_otc"
	callbackTypeReal   = "type_real"
	callbackTypeCrypto = "type_crypto"
	callbackBack       = "back_to_types"
	callbackGetSignal  = "get_signal"
	callbackPairPrefix = "pair:"
)

// menuCategories - меню выбора категории активов
func menuCategories() [][]Choice {
	return [][]Choice{
		{{Label: "🕹 Pares OTC", Data: callbackTypeOTC}},
		{{Label: "📈 Pares reales", Data: callbackTypeReal}},
		{{Label: "🪙 Cryptomonedas", Data: callbackTypeCrypto}},
	}
}

// menuInstruments - меню инструментов категории с кнопкой возврата
func menuInstruments(instruments []string) [][]Choice {
	rows := make([][]Choice, 0, len(instruments)+1)
	for _, p := range instruments {
		rows = append(rows, []Choice{{Label: p, Data: callbackPairPrefix + p}})
	}
	rows = append(rows, []Choice{{Label: "🔙 Volver", Data: callbackBack}})
	return rows
}

// menuAfterSelection - кнопки после выбора пары
func menuAfterSelection() [][]Choice {
	return [][]Choice{
		{{Label: "📩 OBTENER SEÑAL", Data: callbackGetSignal}},
		{{Label: "🔙 Volver", Data: callbackBack}},
	}
}

// MenuSignalOnly - одна кнопка запроса сигнала (используется и в рассылке)
func MenuSignalOnly() [][]Choice {
	return [][]Choice{
		{{Label: "📩 OBTENER SEÑAL", Data: callbackGetSignal}},
	}
}

// categoryCallbacks сопоставляет callback-данные категории каталога
func categoryFromCallback(data string) (catalog.Category, bool) {
	switch data {
	case callbackTypeOTC:
		return catalog.CategoryOTC, true
	case callbackTypeReal:
		return catalog.CategoryReal, true
	case callbackTypeCrypto:
		return catalog.CategoryCrypto, true
	}
	return "", false
}

// categoryPrompt возвращает заголовок меню инструментов категории
func categoryPrompt(category catalog.Category) string {
	switch category {
	case catalog.CategoryOTC:
		return textChooseOTC
	case catalog.CategoryReal:
		return textChooseReal
	case catalog.CategoryCrypto:
		return textChooseCrypto
	}
	return textChooseType
}
