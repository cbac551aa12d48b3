package output

import (
	"github.com/iwvelando/dream-calculator/pkg/finance"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Label keys double as the English text.
const (
	labelSavingsHeading  = "--- Piggy bank plan ---"
	labelDreamHeading    = "--- Dream: %s ---"
	labelGoalHeading     = "--- Dream plan ---"
	labelDeposit         = "Deposit: %s %s for %d years (%d deposits)"
	labelRate            = "Annual rate: %.2f%% (%s)"
	labelCompound        = "compound"
	labelSimple          = "no interest"
	labelGrowth          = "Deposit growth: %.2f%% per year"
	labelFutureValue     = "Future value: %s"
	labelTotalInvested   = "Total invested: %s"
	labelInterestEarned  = "Interest earned: %s"
	labelTarget          = "Target: %s in %d years"
	labelPayment         = "Save %s %s (%d deposits)"
	labelTotalDeposited  = "Total deposited: %s"
	labelExchangeRate    = "Rate: 1 %s = %.4f %s"
	labelSeriesHeader    = "Year | Saved so far | Invested so far"
	labelSeriesRule      = "____ | ____________ | _______________"
	labelTableHeader     = "Year | Per deposit | Increase since year 1 | Invested this year"
	labelTableRule       = "____ | ___________ | _____________________ | __________________"
	labelSelfTestSummary = "Self-tests: passed %d/%d"
	labelPass            = "PASS"
	labelFail            = "FAIL"
	labelSelfTestRow     = "[%s] %s: expected %s, got %s"
	labelConversion      = "%s %s = %s %s"
	labelRatesHeading    = "--- Exchange rates per 1 %s ---"
	labelPerDay          = "per day"
	labelPerTwoWeeks     = "every two weeks"
	labelPerMonth        = "per month"
)

var russianLabels = map[string]string{
	labelSavingsHeading:  "--- План копилки ---",
	labelDreamHeading:    "--- Мечта: %s ---",
	labelGoalHeading:     "--- План мечты ---",
	labelDeposit:         "Взнос: %s %s в течение %d лет (%d взносов)",
	labelRate:            "Годовая ставка: %.2f%% (%s)",
	labelCompound:        "сложный процент",
	labelSimple:          "без процентов",
	labelGrowth:          "Рост взноса: %.2f%% в год",
	labelFutureValue:     "Итоговая сумма: %s",
	labelTotalInvested:   "Всего вложено: %s",
	labelInterestEarned:  "Заработано процентов: %s",
	labelTarget:          "Цель: %s за %d лет",
	labelPayment:         "Откладывай %s %s (%d взносов)",
	labelTotalDeposited:  "Всего отложено: %s",
	labelExchangeRate:    "Курс: 1 %s = %.4f %s",
	labelSeriesHeader:    "Год | Накоплено | Вложено",
	labelSeriesRule:      "___ | _________ | _______",
	labelTableHeader:     "Год | Взнос | Прирост с 1-го года | Вложено за год",
	labelTableRule:       "___ | _____ | ___________________ | ______________",
	labelSelfTestSummary: "Самопроверка: пройдено %d/%d",
	labelPass:            "ОК",
	labelFail:            "ОШИБКА",
	labelSelfTestRow:     "[%s] %s: ожидалось %s, получено %s",
	labelConversion:      "%s %s = %s %s",
	labelRatesHeading:    "--- Курсы за 1 %s ---",
	labelPerDay:          "в день",
	labelPerTwoWeeks:     "раз в две недели",
	labelPerMonth:        "в месяц",
}

func init() {
	for key, ru := range russianLabels {
		// English is registered too so the catalog matcher never picks
		// Russian for an English printer.
		_ = message.SetString(language.English, key, key)
		_ = message.SetString(language.Russian, key, ru)
	}
}

func frequencyLabel(f finance.Frequency) string {
	switch f {
	case finance.Daily:
		return labelPerDay
	case finance.Biweekly:
		return labelPerTwoWeeks
	default:
		return labelPerMonth
	}
}
