package solana

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mr-tron/base58"
)

// systemProgramID is the native System Program, owner of lamport transfers.
const systemProgramID = "11111111111111111111111111111111"

// systemTransferIndex is the System Program instruction index for Transfer.
const systemTransferIndex uint32 = 2

// SOLToLamports converts a SOL amount to lamports, floor-rounded.
func SOLToLamports(sol float64) uint64 {
	return uint64(math.Floor(sol * LamportsPerSOL))
}

// LamportsToSOL converts lamports to SOL.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}

// BuildTransferTransaction builds and signs a legacy single-instruction
// System Program transfer of lamports from the keypair (sole signer and
// fee payer) to recipient, returning the base64-encoded wire transaction.
func BuildTransferTransaction(from *Keypair, recipient string, lamports uint64, recentBlockhash string) (string, error) {
	toKey, err := base58.Decode(recipient)
	if err != nil {
		return "", fmt.Errorf("decode recipient: %w", err)
	}
	if len(toKey) != 32 {
		return "", fmt.Errorf("recipient key must be 32 bytes, got %d", len(toKey))
	}

	blockhash, err := base58.Decode(recentBlockhash)
	if err != nil {
		return "", fmt.Errorf("decode blockhash: %w", err)
	}
	if len(blockhash) != 32 {
		return "", fmt.Errorf("blockhash must be 32 bytes, got %d", len(blockhash))
	}

	programKey, err := base58.Decode(systemProgramID)
	if err != nil {
		return "", fmt.Errorf("decode system program id: %w", err)
	}

	// Account ordering: writable signers, writable non-signers, readonly
	// non-signers. For a self-paid transfer: from (signer, writable),
	// to (writable), system program (readonly).
	message := buildTransferMessage(from.PublicKey(), toKey, programKey, blockhash, lamports)

	signature := from.Sign(message)

	// Wire format: compact array of signatures followed by the message.
	tx := make([]byte, 0, 1+len(signature)+len(message))
	tx = append(tx, encodeShortvecLen(1)...)
	tx = append(tx, signature...)
	tx = append(tx, message...)

	return base64.StdEncoding.EncodeToString(tx), nil
}

// buildTransferMessage serializes a legacy message holding one System
// Program transfer instruction.
func buildTransferMessage(fromKey, toKey, programKey, blockhash []byte, lamports uint64) []byte {
	var msg []byte

	// Header: 1 required signature, 0 readonly signed, 1 readonly unsigned.
	msg = append(msg, 1, 0, 1)

	// Account keys.
	msg = append(msg, encodeShortvecLen(3)...)
	msg = append(msg, fromKey...)
	msg = append(msg, toKey...)
	msg = append(msg, programKey...)

	msg = append(msg, blockhash...)

	// Instruction data: u32 LE instruction index, u64 LE lamports.
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], systemTransferIndex)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	// Instructions: one transfer referencing accounts [from, to].
	msg = append(msg, encodeShortvecLen(1)...)
	msg = append(msg, 2) // program id index
	msg = append(msg, encodeShortvecLen(2)...)
	msg = append(msg, 0, 1)
	msg = append(msg, encodeShortvecLen(len(data))...)
	msg = append(msg, data...)

	return msg
}

// encodeShortvecLen encodes a length in Solana's compact-u16 format:
// little-endian base-128 varint capped at 3 bytes.
func encodeShortvecLen(n int) []byte {
	var out []byte
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			out = append(out, b)
			return out
		}
		out = append(out, b|0x80)
	}
}
