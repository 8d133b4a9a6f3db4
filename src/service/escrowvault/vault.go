package escrowvault

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount    = errors.New("escrow: invalid amount")
	ErrInsufficientHeld = errors.New("escrow: insufficient held funds")
	ErrInsufficientCash = errors.New("escrow: insufficient vault cash")
)

// Vault 内存资金托管
// 原生币托管的进程内替身: held 记录按付款方在途托管的金额,
// cash 为成交后归入金库的现金池, balances 为累计放款额 (收款方视角)
// 不变式: 所有入金 = sum(held) + cash + sum(balances)
type Vault struct {
	mu       sync.Mutex
	held     map[string]decimal.Decimal
	balances map[string]decimal.Decimal
	cash     decimal.Decimal
}

// New 创建空的资金托管
func New() *Vault {
	return &Vault{
		held:     make(map[string]decimal.Decimal),
		balances: make(map[string]decimal.Decimal),
		cash:     decimal.Zero,
	}
}

// HoldFunds 托管付款方资金
func (v *Vault) HoldFunds(from string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	key := strings.ToLower(from)
	v.held[key] = v.heldLocked(key).Add(amount)
	return nil
}

// ConsumeHold 成交时消耗付款方的托管额度, 金额转入金库现金
func (v *Vault) ConsumeHold(from string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	key := strings.ToLower(from)
	held := v.heldLocked(key)
	if held.LessThan(amount) {
		return ErrInsufficientHeld
	}
	v.held[key] = held.Sub(amount)
	v.cash = v.cash.Add(amount)
	return nil
}

// ReleaseFunds 从金库现金放款
func (v *Vault) ReleaseFunds(to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cash.LessThan(amount) {
		return ErrInsufficientCash
	}
	key := strings.ToLower(to)
	v.cash = v.cash.Sub(amount)
	v.balances[key] = v.balanceLocked(key).Add(amount)
	return nil
}

// Refund 将托管中的资金退回付款方
func (v *Vault) Refund(to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	key := strings.ToLower(to)
	held := v.heldLocked(key)
	if held.LessThan(amount) {
		return ErrInsufficientHeld
	}
	v.held[key] = held.Sub(amount)
	v.balances[key] = v.balanceLocked(key).Add(amount)
	return nil
}

// Held 查询账户托管中的金额
func (v *Vault) Held(account string) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.heldLocked(strings.ToLower(account))
}

// Balance 查询账户累计收款额
func (v *Vault) Balance(account string) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balanceLocked(strings.ToLower(account))
}

// Cash 当前金库现金 (成交后未放款的部分, 即累计协议费)
func (v *Vault) Cash() decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cash
}

func (v *Vault) heldLocked(key string) decimal.Decimal {
	if d, ok := v.held[key]; ok {
		return d
	}
	return decimal.Zero
}

func (v *Vault) balanceLocked(key string) decimal.Decimal {
	if d, ok := v.balances[key]; ok {
		return d
	}
	return decimal.Zero
}
