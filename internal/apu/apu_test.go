package apu

import "testing"

type flatBus struct {
	mem [65536]uint8
}

func (b *flatBus) Read(addr uint16) uint8 { return b.mem[addr] }

func TestPulseLengthCounterHalt(t *testing.T) {
	a := New(&flatBus{})
	a.WriteRegister(0x4000, 0x20) // halt bit set
	a.WriteRegister(0x4003, 0x08) // length table index 1 -> 254
	if a.pulse1.length != 254 {
		t.Fatalf("length = %d, want 254", a.pulse1.length)
	}
	a.channelEnable[0] = true
	a.clockLengthsAndSweeps()
	if a.pulse1.length != 254 {
		t.Fatalf("halted length counter should not decrement, got %d", a.pulse1.length)
	}
}

func TestPulseLengthCounterDecrementsWhenNotHalted(t *testing.T) {
	a := New(&flatBus{})
	a.WriteRegister(0x4000, 0x00)
	a.WriteRegister(0x4003, 0x08)
	a.clockLengthsAndSweeps()
	if a.pulse1.length != 253 {
		t.Fatalf("length = %d, want 253", a.pulse1.length)
	}
}

func TestFrameIRQFiresAtFourStepBoundary(t *testing.T) {
	a := New(&flatBus{})
	fired := false
	a.FrameIRQ = func() { fired = true }
	for i := 0; i < int(fourStepTicks[3]); i++ {
		a.stepFrameSequencer()
	}
	if !fired {
		t.Fatalf("expected frame IRQ to fire at cycle %d", fourStepTicks[3])
	}
}

func TestFrameIRQInhibitedByWrite(t *testing.T) {
	a := New(&flatBus{})
	a.WriteRegister(0x4017, 0x40) // inhibit bit
	fired := false
	a.FrameIRQ = func() { fired = true }
	for i := 0; i < int(fourStepTicks[3]); i++ {
		a.stepFrameSequencer()
	}
	if fired {
		t.Fatalf("frame IRQ should be inhibited")
	}
}

func TestTriangleMutedWithZeroLinearCounter(t *testing.T) {
	tri := triangleChannel{length: 10, linearCount: 0, timerPeriod: 100}
	if tri.output() != 0 {
		t.Fatalf("expected 0 output with zero linear counter")
	}
}

func TestNoiseMutedWhenShiftBit0Set(t *testing.T) {
	n := noiseChannel{length: 5, shift: 0x0001}
	if n.output() != 0 {
		t.Fatalf("expected 0 output when LFSR bit0 is 1")
	}
}

func TestPulseSweepMutesWhenPeriodBelowEight(t *testing.T) {
	p := pulseChannel{timerPeriod: 2, length: 10}
	if p.output() != 0 {
		t.Fatalf("expected mute for timer period < 8")
	}
}

func TestDMCFetchesFromCPUMemoryAndStepsOutput(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0xC000] = 0x01 // low bit set: output steps up once
	a := New(bus)
	a.WriteRegister(0x4010, 0x00) // rate index 0
	a.WriteRegister(0x4012, 0x00) // sample address $C000
	a.WriteRegister(0x4013, 0x00) // sample length 1 byte
	a.channelEnable[4] = true
	a.dmc.restart()
	a.dmc.bufferEmpty = true

	for i := 0; i < int(dmcRateTable[0])+1; i++ {
		a.dmc.stepTimer(a.Bus, nil)
	}
	if a.dmc.output == 0 {
		t.Fatalf("expected DMC output to have stepped away from 0")
	}
}

func TestMixerZeroWhenAllChannelsSilent(t *testing.T) {
	if s := mix(0, 0, 0, 0, 0); s != 0 {
		t.Fatalf("mix(0,0,0,0,0) = %v, want 0", s)
	}
}

func TestMixerNonZeroWithActivePulse(t *testing.T) {
	if s := mix(15, 0, 0, 0, 0); s <= 0 {
		t.Fatalf("mix with active pulse1 should be positive, got %v", s)
	}
}
