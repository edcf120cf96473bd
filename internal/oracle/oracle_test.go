package oracle

import (
	"errors"
	"math/big"
	"testing"

	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

type recordingHandler struct {
	sender zknotes.Address
	answer *big.Int
	data   [5]*big.Int
	calls  int
}

func (h *recordingHandler) OracleCallback(sender zknotes.Address, answer *big.Int, data [5]*big.Int) error {
	h.sender = sender
	h.answer = answer
	h.data = data
	h.calls++
	return nil
}

func field(v int64) *big.Int { return big.NewInt(v) }

func TestQuestionAnswerFlow(t *testing.T) {
	orc := NewContract()
	divinity := zknotes.AddressFromBig(field(11))
	requester := zknotes.AddressFromBig(field(22))
	target := zknotes.AddressFromBig(field(33))

	handler := &recordingHandler{}
	orc.RegisterCallback(target, handler)

	questionID := field(777)
	callback := [6]*big.Int{target.Big(), field(1), questionID, field(2), field(0), field(0)}
	if err := orc.SubmitQuestion(requester, questionID, divinity, questionID, callback); err != nil {
		t.Fatalf("SubmitQuestion failed: %v", err)
	}

	t.Run("duplicate question id rejected", func(t *testing.T) {
		err := orc.SubmitQuestion(requester, questionID, divinity, questionID, callback)
		if !errors.Is(err, ErrDuplicateQuestion) {
			t.Errorf("expected ErrDuplicateQuestion, got %v", err)
		}
	})

	t.Run("only divinity may answer", func(t *testing.T) {
		err := orc.SubmitAnswer(requester, questionID, field(1))
		if !errors.Is(err, ErrNotDivinity) {
			t.Errorf("expected ErrNotDivinity, got %v", err)
		}
		if handler.calls != 0 {
			t.Error("callback should not fire on rejected answer")
		}
	})

	t.Run("answer dispatches callback", func(t *testing.T) {
		if err := orc.SubmitAnswer(divinity, questionID, field(1)); err != nil {
			t.Fatalf("SubmitAnswer failed: %v", err)
		}
		if handler.calls != 1 {
			t.Fatalf("callback fired %d times, want 1", handler.calls)
		}
		if handler.sender != orc.Address() {
			t.Error("callback sender should be the oracle contract address")
		}
		if handler.answer.Cmp(field(1)) != 0 {
			t.Error("callback answer mismatch")
		}
		want := [5]int64{1, 777, 2, 0, 0}
		for i, v := range want {
			if handler.data[i].Cmp(field(v)) != 0 {
				t.Errorf("payload[%d] = %s, want %d", i, handler.data[i], v)
			}
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		err := orc.SubmitAnswer(divinity, field(999), field(0))
		if !errors.Is(err, ErrUnknownQuestion) {
			t.Errorf("expected ErrUnknownQuestion, got %v", err)
		}
	})
}

func TestRepeatedAnswersRedispatch(t *testing.T) {
	// The oracle does not deduplicate honest answers; downstream contracts
	// decide what to do with multiple results for one question.
	orc := NewContract()
	divinity := zknotes.AddressFromBig(field(11))
	target := zknotes.AddressFromBig(field(33))
	handler := &recordingHandler{}
	orc.RegisterCallback(target, handler)

	questionID := field(5)
	callback := [6]*big.Int{target.Big(), field(0), questionID, field(0), field(0), field(0)}
	if err := orc.SubmitQuestion(target, questionID, divinity, questionID, callback); err != nil {
		t.Fatalf("SubmitQuestion failed: %v", err)
	}
	if err := orc.SubmitAnswer(divinity, questionID, field(1)); err != nil {
		t.Fatalf("first answer failed: %v", err)
	}
	if err := orc.SubmitAnswer(divinity, questionID, field(0)); err != nil {
		t.Fatalf("second answer failed: %v", err)
	}
	if handler.calls != 2 {
		t.Errorf("callback fired %d times, want 2", handler.calls)
	}
}
