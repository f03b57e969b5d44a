package installment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"Parcelo/internal/pkg"

	"github.com/google/uuid"
)

// GroupID deriva a identidade do grupo de parcelas dos campos
// semânticos da compra. Reimportar o mesmo plano resolve para o mesmo
// grupo.
func GroupID(businessKey string, totalPaymentSum float64, installmentTotal int, firstPaymentDate time.Time) string {
	data := fmt.Sprintf("%s:%.2f:%d:%s",
		businessKey,
		totalPaymentSum,
		installmentTotal,
		firstPaymentDate.Format(pkg.DateLayout),
	)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// PaymentHash é a chave única da parcela dentro do grupo.
func PaymentHash(groupId string, index int) string {
	data := fmt.Sprintf("%s:%d", groupId, index)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// RehashWithSalt desambigua uma "compra gêmea": mesmo estabelecimento,
// mesmo total, mesma quantidade de parcelas e mesma data.
func RehashWithSalt(groupId string) string {
	data := fmt.Sprintf("%s:%s", groupId, uuid.NewString())
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// DisplayLabel desambigua apenas a exibição, sem afetar o hash usado
// como chave de armazenamento.
func DisplayLabel(base string, n int) string {
	if n <= 0 {
		return base
	}
	return fmt.Sprintf("%s_copy_%d", base, n)
}
