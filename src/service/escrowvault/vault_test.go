package escrowvault

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestHoldConsumeRelease(t *testing.T) {
	v := New()

	// 托管 -> 消耗 -> 放款 的完整资金路径
	require.NoError(t, v.HoldFunds("0xBuyer", d("1.5")))
	assert.True(t, v.Held("0xBuyer").Equal(d("1.5")))

	require.NoError(t, v.ConsumeHold("0xBuyer", d("1.0")))
	assert.True(t, v.Held("0xBuyer").Equal(d("0.5")))
	assert.True(t, v.Cash().Equal(d("1.0")))

	require.NoError(t, v.ReleaseFunds("0xSeller", d("0.9")))
	assert.True(t, v.Balance("0xSeller").Equal(d("0.9")))
	assert.True(t, v.Cash().Equal(d("0.1")))
}

func TestRefundReturnsHeldFunds(t *testing.T) {
	v := New()

	require.NoError(t, v.HoldFunds("0xBidder", d("2")))
	require.NoError(t, v.Refund("0xBidder", d("2")))

	assert.True(t, v.Held("0xBidder").IsZero())
	assert.True(t, v.Balance("0xBidder").Equal(d("2")))

	// 超出托管额度的退款被拒绝
	err := v.Refund("0xBidder", d("0.1"))
	assert.ErrorIs(t, err, ErrInsufficientHeld)
}

func TestReleaseRequiresCash(t *testing.T) {
	v := New()

	// 资金池为空时不能放款
	err := v.ReleaseFunds("0xSeller", d("1"))
	assert.ErrorIs(t, err, ErrInsufficientCash)

	// 消耗超出托管额度被拒绝
	require.NoError(t, v.HoldFunds("0xBuyer", d("0.5")))
	err = v.ConsumeHold("0xBuyer", d("1"))
	assert.ErrorIs(t, err, ErrInsufficientHeld)
}

func TestVaultConservation(t *testing.T) {
	v := New()

	// 任意操作序列后: 托管总额 + 资金池 + 余额总额 == 累计入金
	require.NoError(t, v.HoldFunds("0xA", d("3")))
	require.NoError(t, v.HoldFunds("0xB", d("2")))
	require.NoError(t, v.ConsumeHold("0xA", d("1.5")))
	require.NoError(t, v.Refund("0xB", d("2")))
	require.NoError(t, v.ReleaseFunds("0xC", d("1")))

	total := v.Held("0xA").Add(v.Held("0xB")).
		Add(v.Cash()).
		Add(v.Balance("0xA")).Add(v.Balance("0xB")).Add(v.Balance("0xC"))
	assert.True(t, total.Equal(d("5")), "total = %s", total)
}
