package walker

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/rawblock/dex-arb-engine/internal/codec"
	"github.com/rawblock/dex-arb-engine/internal/registry"
	"github.com/rawblock/dex-arb-engine/internal/schemas"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func mustProgramID(t *testing.T, b58 string) models.PubKey {
	t.Helper()
	id, err := models.PubKeyFromBase58(b58)
	if err != nil {
		t.Fatalf("decode program id %q: %v", b58, err)
	}
	return id
}

func tenPlaceholderAccounts(programID models.PubKey) []models.PubKey {
	accounts := make([]models.PubKey, 0, 11)
	accounts = append(accounts, programID)
	for i := 0; i < 10; i++ {
		var k models.PubKey
		k[0] = byte(i + 1)
		accounts = append(accounts, k)
	}
	return accounts
}

func TestWalkAggregatorRouteDecode(t *testing.T) {
	reg, err := schemas.Default()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	jupiter := mustProgramID(t, "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

	tagHex := "e517cb977ae3ad2a"
	routePlanHex := "00000000"
	inAmountHex := "1027000000000000"
	outAmountHex := "204e000000000000"
	slippageHex := "3200000000000000"
	feeHex := "00"
	dataHex := tagHex + routePlanHex + inAmountHex + outAmountHex + slippageHex + feeHex

	data, err := hex.DecodeString(dataHex)
	if err != nil {
		t.Fatalf("decode test data: %v", err)
	}

	accounts := tenPlaceholderAccounts(jupiter)
	accountIndices := make([]uint8, 10)
	for i := range accountIndices {
		accountIndices[i] = uint8(i + 1)
	}

	tx := &models.TransactionUpdate{
		Signature: models.Signature{1, 2, 3},
		Slot:      100,
		Accounts:  accounts,
		Outer: []models.CompiledInstruction{
			{ProgramIndex: 0, AccountIndices: accountIndices, Data: data},
		},
	}

	w := New(reg)
	var got []models.EventEnvelope
	w.Walk(tx, func(env models.EventEnvelope) {
		got = append(got, env)
	})

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 envelope, got %d", len(got))
	}
	env := got[0]
	if env.Kind != "route" {
		t.Fatalf("expected kind=route, got %s", env.Kind)
	}

	wantArgs := map[string]uint64{
		"in_amount":          10000,
		"quoted_out_amount":  20000,
		"slippage_bps":       50,
		"platform_fee_bps":   0,
	}
	for name, want := range wantArgs {
		v, ok := env.ArgByName(name)
		if !ok {
			t.Fatalf("missing arg %s", name)
		}
		if v.Undecoded {
			t.Fatalf("arg %s marked undecoded", name)
		}
		if v.U64 != want {
			t.Errorf("arg %s = %d, want %d", name, v.U64, want)
		}
	}

	if len(env.Accounts) != 10 {
		t.Errorf("expected 10 accounts, got %d", len(env.Accounts))
	}
	if env.TagBytes.String() != tagHex {
		t.Errorf("tag_bytes = %s, want %s", env.TagBytes.String(), tagHex)
	}
}

func TestWalkUnknownTagEmitsNothing(t *testing.T) {
	reg, err := schemas.Default()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	jupiter := mustProgramID(t, "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

	data, _ := hex.DecodeString("deadbeefdeadbeef0000000000000000")
	tx := &models.TransactionUpdate{
		Accounts: []models.PubKey{jupiter},
		Outer: []models.CompiledInstruction{
			{ProgramIndex: 0, AccountIndices: nil, Data: data},
		},
	}

	w := New(reg)
	called := false
	w.Walk(tx, func(models.EventEnvelope) { called = true })
	if called {
		t.Fatal("expected no envelope for unknown tag")
	}
}

func TestWalkShortDataEmitsNothing(t *testing.T) {
	reg, err := schemas.Default()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	jupiter := mustProgramID(t, "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

	data := []byte{1, 2, 3, 4, 5, 6, 7} // 7 bytes
	tx := &models.TransactionUpdate{
		Accounts: []models.PubKey{jupiter},
		Outer: []models.CompiledInstruction{
			{ProgramIndex: 0, AccountIndices: nil, Data: data},
		},
	}

	w := New(reg)
	called := false
	w.Walk(tx, func(models.EventEnvelope) { called = true })
	if called {
		t.Fatal("expected no envelope for short data")
	}
}

// Receive timestamps are equal across envelopes from a single transaction
// and handle_us is non-negative.
func TestWalkTimestampsConsistent(t *testing.T) {
	reg, err := schemas.Default()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	jupiter := mustProgramID(t, "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

	dataHex := "e517cb977ae3ad2a" + "00000000" + "1027000000000000" + "204e000000000000" + "3200000000000000" + "00"
	data, _ := hex.DecodeString(dataHex)

	accounts := tenPlaceholderAccounts(jupiter)
	accountIndices := make([]uint8, 10)
	for i := range accountIndices {
		accountIndices[i] = uint8(i + 1)
	}

	tx := &models.TransactionUpdate{
		Accounts: accounts,
		RecvUs:   1_000_000,
		Outer: []models.CompiledInstruction{
			{ProgramIndex: 0, AccountIndices: accountIndices, Data: data},
			{ProgramIndex: 0, AccountIndices: accountIndices, Data: data},
		},
	}

	w := New(reg)
	var envs []models.EventEnvelope
	w.Walk(tx, func(env models.EventEnvelope) { envs = append(envs, env) })

	if len(envs) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(envs))
	}
	if envs[0].Metadata.RecvUs != envs[1].Metadata.RecvUs {
		t.Fatalf("recv_us differs across envelopes from one transaction: %d != %d",
			envs[0].Metadata.RecvUs, envs[1].Metadata.RecvUs)
	}
	for _, e := range envs {
		if e.Metadata.HandleUs < 0 {
			t.Errorf("handle_us negative: %d", e.Metadata.HandleUs)
		}
	}
}

// An instruction whose schema requires a companion inner event only yields
// an envelope when some inner instruction in its group carries that tag.
func TestWalkRequiresInnerConfirmation(t *testing.T) {
	programID := mustProgramID(t, "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	reg := registry.New()
	err := reg.Add(models.ProtocolSchema{
		ProgramID: programID,
		Name:      "gated_protocol",
		Instructions: []models.InstructionSchema{
			{
				Name:          "gated_swap",
				Tag:           codec.DeriveTag("gated_swap"),
				Accounts:      []models.AccountSlot{{Name: "pool"}},
				Args:          []models.Field{{Name: "amount", Type: models.FieldType{Kind: models.KindU64}}},
				RequiresInner: true,
				InnerTag:      models.Tag{0x1f, 0x2e, 0x3d, 0x4c, 0x5b, 0x6a, 0x79, 0x88},
			},
		},
	})
	if err != nil {
		t.Fatalf("add schema: %v", err)
	}

	outerTag := codec.DeriveTag("gated_swap")
	outerData := append(append([]byte{}, outerTag[:]...), u64le(1000)...)
	innerTag := models.Tag{0x1f, 0x2e, 0x3d, 0x4c, 0x5b, 0x6a, 0x79, 0x88}

	base := func() *models.TransactionUpdate {
		var pool models.PubKey
		pool[0] = 0xaa
		return &models.TransactionUpdate{
			Accounts: []models.PubKey{programID, pool},
			Outer: []models.CompiledInstruction{
				{ProgramIndex: 0, AccountIndices: []uint8{1}, Data: outerData},
			},
		}
	}

	w := New(reg)

	noInner := base()
	called := false
	w.Walk(noInner, func(models.EventEnvelope) { called = true })
	if called {
		t.Fatal("expected no envelope without the companion inner event")
	}

	withInner := base()
	withInner.Inner = []models.InnerInstructionGroup{
		{OuterIndex: 0, Instructions: []models.InnerInstruction{
			{ProgramIndex: 0, Data: innerTag[:]},
		}},
	}
	var envs []models.EventEnvelope
	w.Walk(withInner, func(env models.EventEnvelope) { envs = append(envs, env) })
	if len(envs) != 1 {
		t.Fatalf("expected 1 envelope once the inner event is present, got %d", len(envs))
	}
	if envs[0].Kind != "gated_swap" {
		t.Fatalf("unexpected kind %s", envs[0].Kind)
	}
}
