package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/mr-tron/base58"
)

func testKeypair(t *testing.T) *Keypair {
	t.Helper()
	kp, err := ParseKeypair(base58.Encode(testSecretKey(t)))
	if err != nil {
		t.Fatalf("ParseKeypair failed: %v", err)
	}
	return kp
}

func TestSOLToLamports_Floors(t *testing.T) {
	tests := []struct {
		sol  float64
		want uint64
	}{
		{1, 1_000_000_000},
		{0.5, 500_000_000},
		{1.5, 1_500_000_000},
		{0.0000000019, 1}, // sub-lamport fraction floors
		{0, 0},
	}

	for _, tt := range tests {
		if got := SOLToLamports(tt.sol); got != tt.want {
			t.Errorf("SOLToLamports(%v) = %d, want %d", tt.sol, got, tt.want)
		}
	}
}

func TestLamportsToSOL(t *testing.T) {
	if got := LamportsToSOL(2_500_000_000); got != 2.5 {
		t.Errorf("LamportsToSOL = %v, want 2.5", got)
	}
}

func TestBuildTransferTransaction_WireFormat(t *testing.T) {
	kp := testKeypair(t)

	recipientKey := make([]byte, 32)
	recipientKey[0] = 0x42
	recipient := base58.Encode(recipientKey)

	blockhashBytes := make([]byte, 32)
	blockhashBytes[31] = 0x07
	blockhash := base58.Encode(blockhashBytes)

	const lamports = 1_234_567

	txBase64, err := BuildTransferTransaction(kp, recipient, lamports, blockhash)
	if err != nil {
		t.Fatalf("BuildTransferTransaction failed: %v", err)
	}

	tx, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		t.Fatalf("decode transaction: %v", err)
	}

	// Signature section: compact length 1, then 64 signature bytes.
	if tx[0] != 1 {
		t.Fatalf("signature count = %d, want 1", tx[0])
	}
	signature := tx[1:65]
	message := tx[65:]

	if !ed25519.Verify(ed25519.PublicKey(kp.PublicKey()), message, signature) {
		t.Fatal("signature does not verify against message")
	}

	// Header: 1 required signature, 0 readonly signed, 1 readonly unsigned.
	if message[0] != 1 || message[1] != 0 || message[2] != 1 {
		t.Fatalf("header = %v, want [1 0 1]", message[:3])
	}

	// Account keys: from, to, system program.
	if message[3] != 3 {
		t.Fatalf("account count = %d, want 3", message[3])
	}
	keys := message[4:]
	if !bytes.Equal(keys[0:32], kp.PublicKey()) {
		t.Error("account 0 is not the sender")
	}
	if !bytes.Equal(keys[32:64], recipientKey) {
		t.Error("account 1 is not the recipient")
	}
	programKey, _ := base58.Decode(systemProgramID)
	if !bytes.Equal(keys[64:96], programKey) {
		t.Error("account 2 is not the system program")
	}

	// Blockhash follows the keys.
	if !bytes.Equal(keys[96:128], blockhashBytes) {
		t.Error("blockhash mismatch")
	}

	// One instruction: program index 2, accounts [0,1], 12 data bytes.
	instr := keys[128:]
	if instr[0] != 1 {
		t.Fatalf("instruction count = %d, want 1", instr[0])
	}
	if instr[1] != 2 {
		t.Errorf("program id index = %d, want 2", instr[1])
	}
	if instr[2] != 2 || instr[3] != 0 || instr[4] != 1 {
		t.Errorf("instruction accounts = %v, want [0 1]", instr[3:5])
	}
	if instr[5] != 12 {
		t.Fatalf("instruction data length = %d, want 12", instr[5])
	}
	data := instr[6:18]
	if idx := binary.LittleEndian.Uint32(data[0:4]); idx != systemTransferIndex {
		t.Errorf("instruction index = %d, want %d", idx, systemTransferIndex)
	}
	if amt := binary.LittleEndian.Uint64(data[4:12]); amt != lamports {
		t.Errorf("lamports = %d, want %d", amt, lamports)
	}
}

func TestBuildTransferTransaction_Rejects(t *testing.T) {
	kp := testKeypair(t)
	blockhash := base58.Encode(make([]byte, 32))

	if _, err := BuildTransferTransaction(kp, "bad-0OIl", 1, blockhash); err == nil {
		t.Error("accepted undecodable recipient")
	}
	if _, err := BuildTransferTransaction(kp, base58.Encode([]byte{1}), 1, blockhash); err == nil {
		t.Error("accepted short recipient key")
	}
	if _, err := BuildTransferTransaction(kp, kp.Address(), 1, base58.Encode([]byte{1, 2})); err == nil {
		t.Error("accepted short blockhash")
	}
}

func TestEncodeShortvecLen(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		if got := encodeShortvecLen(tt.n); !bytes.Equal(got, tt.want) {
			t.Errorf("encodeShortvecLen(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
