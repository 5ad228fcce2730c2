package dealer

import "fmt"

// Phase is how far the board has been disclosed.
type Phase uint8

const (
	PreFlop Phase = iota
	Flop
	Turn
	River
)

var phaseNames = [...]string{"pre_flop", "flop", "turn", "river"}

func (p Phase) String() string {
	if int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
	return phaseNames[p]
}

// Next returns the phase after p. ok is false at the river.
func (p Phase) Next() (next Phase, ok bool) {
	if p >= River {
		return p, false
	}
	return p + 1, true
}

// IsStreet reports whether p names a community-card street.
func (p Phase) IsStreet() bool {
	return p >= Flop && p <= River
}

// ParsePhase accepts the snake_case names.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if s == name {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) {
	if int(p) >= len(phaseNames) {
		return nil, fmt.Errorf("unknown phase %d", uint8(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	v, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Discipline selects how streets are released at a table.
type Discipline uint8

const (
	// Progressive tables release a street to anyone holding its secret.
	Progressive Discipline = iota
	// Monotonic tables release streets strictly in phase order, owner driven.
	Monotonic
)

var disciplineNames = [...]string{"progressive", "monotonic"}

func (d Discipline) String() string {
	if int(d) >= len(disciplineNames) {
		return fmt.Sprintf("discipline(%d)", uint8(d))
	}
	return disciplineNames[d]
}

// ParseDiscipline accepts "progressive" or "monotonic".
func ParseDiscipline(s string) (Discipline, error) {
	for i, name := range disciplineNames {
		if s == name {
			return Discipline(i), nil
		}
	}
	return 0, fmt.Errorf("unknown discipline %q", s)
}

func (d Discipline) MarshalText() ([]byte, error) {
	if int(d) >= len(disciplineNames) {
		return nil, fmt.Errorf("unknown discipline %d", uint8(d))
	}
	return []byte(disciplineNames[d]), nil
}

func (d *Discipline) UnmarshalText(text []byte) error {
	v, err := ParseDiscipline(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ShuffleMode picks how the deck is permuted.
type ShuffleMode uint8

const (
	// Seeded draws one seed and hashes it per Fisher-Yates step.
	Seeded ShuffleMode = iota
	// Streamed draws every Fisher-Yates index from the stream.
	Streamed
)

// ParseShuffleMode accepts "seeded" or "stream".
func ParseShuffleMode(s string) (ShuffleMode, error) {
	switch s {
	case "seeded", "":
		return Seeded, nil
	case "stream":
		return Streamed, nil
	}
	return 0, fmt.Errorf("unknown shuffle mode %q", s)
}
