package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"Parcelo/internal/pkg"
)

// ContentHash é a chave de deduplicação para linhas avulsas e de
// assinatura. Parcelas usam o hash derivado do grupo (pacote
// installment).
func ContentHash(businessId, cardId string, dealDate time.Time, chargedAmount float64, txType Types) string {
	data := fmt.Sprintf("%s:%s:%s:%.2f:%s",
		businessId,
		cardId,
		dealDate.Format(pkg.DateLayout),
		chargedAmount,
		txType,
	)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
