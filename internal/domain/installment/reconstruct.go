package installment

import (
	"time"

	appErrors "Parcelo/internal/errors"
	"Parcelo/internal/pkg"

	"github.com/shopspring/decimal"
)

type Cadence string

const (
	CadenceMonthly Cadence = "MONTHLY"
	CadenceAnnual  Cadence = "ANNUAL"
)

func (c Cadence) IsValid() bool {
	switch c {
	case CadenceMonthly, CadenceAnnual:
		return true
	}
	return false
}

// matchTolerance é a tolerância relativa usada para casar um pagamento
// com um plano existente pelo valor total da compra.
const matchTolerance = 0.01

// Observation é a visão parcial de um plano: um pagamento conhecido,
// seu índice e o total de parcelas.
type Observation struct {
	BusinessKey      string
	TotalPaymentSum  float64
	RegularPayment   float64
	InstallmentTotal int
	ObservedIndex    int
	ObservedDate     time.Time
	Cadence          Cadence
}

type PlannedPayment struct {
	Index    int
	Amount   float64
	DueDate  time.Time
	Hash     string
	Observed bool
}

type Plan struct {
	GroupId          string
	FirstPaymentDate time.Time
	TotalPaymentSum  float64
	Payments         []PlannedPayment
}

// Reconstruct deriva a faixa teórica completa 1..total de um plano a
// partir de um único pagamento observado. A parcela 1 é sempre a âncora
// de datas; nenhuma data é inventada além da cadência mensal/anual a
// partir dela.
func Reconstruct(obs *Observation) (*Plan, error) {
	if err := validateObservation(obs); err != nil {
		return nil, err
	}

	anchor := stepDate(pkg.TruncateToDay(obs.ObservedDate), obs.Cadence, -(obs.ObservedIndex - 1))
	groupId := GroupID(obs.BusinessKey, obs.TotalPaymentSum, obs.InstallmentTotal, anchor)
	firstAmount := FirstPaymentAmount(obs.TotalPaymentSum, obs.RegularPayment, obs.InstallmentTotal)

	payments := make([]PlannedPayment, 0, obs.InstallmentTotal)
	for i := 1; i <= obs.InstallmentTotal; i++ {
		amount := obs.RegularPayment
		if i == 1 {
			amount = firstAmount
		}
		payments = append(payments, PlannedPayment{
			Index:    i,
			Amount:   amount,
			DueDate:  stepDate(anchor, obs.Cadence, i-1),
			Hash:     PaymentHash(groupId, i),
			Observed: i == obs.ObservedIndex,
		})
	}

	return &Plan{
		GroupId:          groupId,
		FirstPaymentDate: anchor,
		TotalPaymentSum:  obs.TotalPaymentSum,
		Payments:         payments,
	}, nil
}

// FirstPaymentAmount aplica a regra de arredondamento da primeira
// parcela: parcela 1 absorve a diferença entre o total da compra e as
// parcelas regulares.
func FirstPaymentAmount(totalPaymentSum, regularPayment float64, installmentTotal int) float64 {
	total := decimal.NewFromFloat(totalPaymentSum)
	regular := decimal.NewFromFloat(regularPayment)
	rest := regular.Mul(decimal.NewFromInt(int64(installmentTotal - 1)))
	return total.Sub(rest).Round(2).InexactFloat64()
}

// MatchesPlan compara pelo valor total da compra (OriginalAmount,
// idêntico em todas as parcelas), nunca pelo valor cobrado por parcela,
// porque a parcela 1 normalmente difere.
func MatchesPlan(incomingTotalSum, planTotalSum float64) bool {
	incoming := decimal.NewFromFloat(incomingTotalSum)
	known := decimal.NewFromFloat(planTotalSum)
	if known.IsZero() {
		return incoming.IsZero()
	}
	diff := incoming.Sub(known).Abs()
	return diff.LessThanOrEqual(known.Abs().Mul(decimal.NewFromFloat(matchTolerance)))
}

func validateObservation(obs *Observation) error {
	if obs == nil {
		return appErrors.NewValidationError("observation", "é obrigatório")
	}
	if obs.InstallmentTotal < 1 {
		return appErrors.NewValidationError("installmentTotal", "deve ser maior ou igual a 1")
	}
	if obs.ObservedIndex < 1 || obs.ObservedIndex > obs.InstallmentTotal {
		return appErrors.NewValidationError("installmentIndex", "deve estar entre 1 e o total de parcelas")
	}
	if obs.TotalPaymentSum <= 0 {
		return appErrors.NewValidationError("totalPaymentSum", "deve ser maior que zero")
	}
	if obs.RegularPayment <= 0 {
		return appErrors.NewValidationError("regularPayment", "deve ser maior que zero")
	}
	if obs.ObservedDate.IsZero() {
		return appErrors.NewValidationError("dealDate", "é obrigatório")
	}
	if !obs.Cadence.IsValid() {
		return appErrors.NewValidationError("cadence", "deve ser MONTHLY ou ANNUAL")
	}
	return nil
}

// stepDate avança ou retrocede a âncora em cadências inteiras. O dia é
// limitado ao último dia do mês de destino e âncoras de fim de mês
// (dia >= 29) permanecem no fim do mês, de modo que avançar e
// retroceder se cancelam (time.AddDate estoura 31/01 + 1 mês para
// 02/03).
func stepDate(anchor time.Time, cadence Cadence, steps int) time.Time {
	months := steps
	if cadence == CadenceAnnual {
		months = steps * 12
	}

	total := int(anchor.Month()) - 1 + months
	yearOffset := total / 12
	monthIndex := total % 12
	if monthIndex < 0 {
		monthIndex += 12
		yearOffset--
	}
	year := anchor.Year() + yearOffset
	month := time.Month(monthIndex + 1)

	day := anchor.Day()
	last := lastDayOfMonth(year, month)
	if day > last || (day >= 29 && day == lastDayOfMonth(anchor.Year(), anchor.Month())) {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
