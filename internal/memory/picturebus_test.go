package memory

import (
	"testing"

	"nesgo/internal/cartridge"
)

type stubPattern struct{ chr [0x2000]uint8 }

func (s *stubPattern) ReadCHR(addr uint16) uint8         { return s.chr[addr&0x1FFF] }
func (s *stubPattern) WriteCHR(addr uint16, value uint8) { s.chr[addr&0x1FFF] = value }

type stubMirror struct{ mode cartridge.Mirror }

func (s stubMirror) CurrentMirror() cartridge.Mirror { return s.mode }

func TestPaletteAliasing(t *testing.T) {
	pb := NewPictureBus()
	pb.Pattern = &stubPattern{}
	pb.Mirror = stubMirror{cartridge.MirrorHorizontal}

	pb.Write(0x3F00, 0x0F)
	if got := pb.Read(0x3F10); got != 0x0F {
		t.Fatalf("expected $3F10 to alias $3F00, got %#x", got)
	}
	pb.Write(0x3F1C, 0x20)
	if got := pb.Read(0x3F0C); got != 0x20 {
		t.Fatalf("expected $3F0C to alias $3F1C, got %#x", got)
	}
}

func TestHorizontalMirroring(t *testing.T) {
	pb := NewPictureBus()
	pb.Pattern = &stubPattern{}
	pb.Mirror = stubMirror{cartridge.MirrorHorizontal}

	pb.Write(0x2000, 0xAB)
	if got := pb.Read(0x2400); got != 0xAB {
		t.Fatalf("horizontal mirroring: $2000 and $2400 should share a table")
	}
	if got := pb.Read(0x2800); got == 0xAB {
		t.Fatalf("horizontal mirroring: $2800 should be a different table")
	}
}

func TestVerticalMirroring(t *testing.T) {
	pb := NewPictureBus()
	pb.Pattern = &stubPattern{}
	pb.Mirror = stubMirror{cartridge.MirrorVertical}

	pb.Write(0x2000, 0xCD)
	if got := pb.Read(0x2800); got != 0xCD {
		t.Fatalf("vertical mirroring: $2000 and $2800 should share a table")
	}
	if got := pb.Read(0x2400); got == 0xCD {
		t.Fatalf("vertical mirroring: $2400 should be a different table")
	}
}

func TestPatternTableRoutesToMapper(t *testing.T) {
	pb := NewPictureBus()
	pat := &stubPattern{}
	pb.Pattern = pat
	pb.Mirror = stubMirror{cartridge.MirrorHorizontal}

	pb.Write(0x0010, 0x55)
	if pat.chr[0x10] != 0x55 {
		t.Fatalf("expected pattern table write to reach mapper")
	}
}
