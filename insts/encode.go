package insts

import "encoding/binary"

// EncodeR assembles a register-type word.
func EncodeR(opcode, rs, rt, rd, shamt, funct uint8) uint32 {
	return uint32(opcode&0x3f)<<26 |
		uint32(rs&0x1f)<<21 |
		uint32(rt&0x1f)<<16 |
		uint32(rd&0x1f)<<11 |
		uint32(shamt&0x1f)<<6 |
		uint32(funct&0x3f)
}

// EncodeI assembles an immediate-type word.
func EncodeI(opcode, rs, rt uint8, imm uint16) uint32 {
	return uint32(opcode&0x3f)<<26 |
		uint32(rs&0x1f)<<21 |
		uint32(rt&0x1f)<<16 |
		uint32(imm)
}

// EncodeJ assembles a jump-type word from a 26-bit target field.
func EncodeJ(opcode uint8, target uint32) uint32 {
	return uint32(opcode&0x3f)<<26 | target&0x3ffffff
}

// EncodeSpecial assembles a SPECIAL-class word: rd = rs <funct> rt.
func EncodeSpecial(funct, rd, rs, rt uint8) uint32 {
	return EncodeR(OpcodeSpecial, rs, rt, rd, 0, funct)
}

// EncodeShift assembles an immediate shift: rd = rt <funct> sa.
func EncodeShift(funct, rd, rt, sa uint8) uint32 {
	return EncodeR(OpcodeSpecial, 0, rt, rd, sa, funct)
}

// EncodeADD encodes add rd, rs, rt.
func EncodeADD(rd, rs, rt uint8) uint32 { return EncodeSpecial(FunctADD, rd, rs, rt) }

// EncodeADDU encodes addu rd, rs, rt.
func EncodeADDU(rd, rs, rt uint8) uint32 { return EncodeSpecial(FunctADDU, rd, rs, rt) }

// EncodeSUB encodes sub rd, rs, rt.
func EncodeSUB(rd, rs, rt uint8) uint32 { return EncodeSpecial(FunctSUB, rd, rs, rt) }

// EncodeSLT encodes slt rd, rs, rt.
func EncodeSLT(rd, rs, rt uint8) uint32 { return EncodeSpecial(FunctSLT, rd, rs, rt) }

// EncodeMULT encodes mult rs, rt.
func EncodeMULT(rs, rt uint8) uint32 { return EncodeSpecial(FunctMULT, 0, rs, rt) }

// EncodeMADD encodes the SPECIAL2 form of madd rs, rt.
func EncodeMADD(rs, rt uint8) uint32 { return EncodeR(OpcodeSpecial2, rs, rt, 0, 0, 0) }

// EncodeDIV encodes div rs, rt.
func EncodeDIV(rs, rt uint8) uint32 { return EncodeSpecial(FunctDIV, 0, rs, rt) }

// EncodeMFLO encodes mflo rd.
func EncodeMFLO(rd uint8) uint32 { return EncodeSpecial(FunctMFLO, rd, 0, 0) }

// EncodeMFHI encodes mfhi rd.
func EncodeMFHI(rd uint8) uint32 { return EncodeSpecial(FunctMFHI, rd, 0, 0) }

// EncodeJR encodes jr rs.
func EncodeJR(rs uint8) uint32 { return EncodeSpecial(FunctJR, 0, rs, 0) }

// EncodeJALR encodes jalr rd, rs.
func EncodeJALR(rd, rs uint8) uint32 { return EncodeSpecial(FunctJALR, rd, rs, 0) }

// EncodeSYSCALL encodes syscall.
func EncodeSYSCALL() uint32 { return EncodeSpecial(FunctSYSCALL, 0, 0, 0) }

// EncodeBREAK encodes break.
func EncodeBREAK() uint32 { return EncodeSpecial(FunctBREAK, 0, 0, 0) }

// EncodeNOP encodes the canonical no-op (sll $0, $0, 0).
func EncodeNOP() uint32 { return 0 }

// EncodeADDI encodes addi rt, rs, imm.
func EncodeADDI(rt, rs uint8, imm int16) uint32 { return EncodeI(OpcodeADDI, rs, rt, uint16(imm)) }

// EncodeADDIU encodes addiu rt, rs, imm.
func EncodeADDIU(rt, rs uint8, imm int16) uint32 {
	return EncodeI(OpcodeADDIU, rs, rt, uint16(imm))
}

// EncodeORI encodes ori rt, rs, imm.
func EncodeORI(rt, rs uint8, imm uint16) uint32 { return EncodeI(OpcodeORI, rs, rt, imm) }

// EncodeANDI encodes andi rt, rs, imm.
func EncodeANDI(rt, rs uint8, imm uint16) uint32 { return EncodeI(OpcodeANDI, rs, rt, imm) }

// EncodeLUI encodes lui rt, imm.
func EncodeLUI(rt uint8, imm uint16) uint32 { return EncodeI(OpcodeLUI, 0, rt, imm) }

// EncodeBEQ encodes beq rs, rt, offset (offset in instructions).
func EncodeBEQ(rs, rt uint8, offset int16) uint32 {
	return EncodeI(OpcodeBEQ, rs, rt, uint16(offset))
}

// EncodeBNE encodes bne rs, rt, offset (offset in instructions).
func EncodeBNE(rs, rt uint8, offset int16) uint32 {
	return EncodeI(OpcodeBNE, rs, rt, uint16(offset))
}

// EncodeBGTZ encodes bgtz rs, offset (offset in instructions).
func EncodeBGTZ(rs uint8, offset int16) uint32 {
	return EncodeI(OpcodeBGTZ, rs, 0, uint16(offset))
}

// EncodeLoad encodes a load of the given opcode: rt = mem[rs + offset].
func EncodeLoad(opcode, rt, rs uint8, offset int16) uint32 {
	return EncodeI(opcode, rs, rt, uint16(offset))
}

// EncodeStore encodes a store of the given opcode: mem[rs + offset] = rt.
func EncodeStore(opcode, rt, rs uint8, offset int16) uint32 {
	return EncodeI(opcode, rs, rt, uint16(offset))
}

// EncodeLW encodes lw rt, offset(rs).
func EncodeLW(rt, rs uint8, offset int16) uint32 { return EncodeLoad(OpcodeLW, rt, rs, offset) }

// EncodeSW encodes sw rt, offset(rs).
func EncodeSW(rt, rs uint8, offset int16) uint32 { return EncodeStore(OpcodeSW, rt, rs, offset) }

// EncodeJ26 encodes j to an absolute byte address within the current 256MB region.
func EncodeJ26(addr uint32) uint32 { return EncodeJ(OpcodeJ, addr>>2) }

// EncodeJAL26 encodes jal to an absolute byte address within the current 256MB region.
func EncodeJAL26(addr uint32) uint32 { return EncodeJ(OpcodeJAL, addr>>2) }

// EncodeMFC0 encodes mfc0 rt, rd.
func EncodeMFC0(rt, rd uint8) uint32 { return EncodeR(OpcodeCOP0, Cop0MF, rt, rd, 0, 0) }

// EncodeMTC0 encodes mtc0 rt, rd.
func EncodeMTC0(rt, rd uint8) uint32 { return EncodeR(OpcodeCOP0, Cop0MT, rt, rd, 0, 0) }

// EncodeERET encodes eret using the COP0 CO form.
func EncodeERET() uint32 { return EncodeR(OpcodeCOP0, Cop0CO, 0, 0, 0, Cop0FunctERET) }

// BuildProgram converts instruction words into a big-endian byte image.
func BuildProgram(words ...uint32) []byte {
	program := make([]byte, len(words)*4)
	for i, w := range words {
		binary.BigEndian.PutUint32(program[i*4:], w)
	}
	return program
}
