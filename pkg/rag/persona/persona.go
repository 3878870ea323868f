package persona

import (
	"errors"
	"fmt"
	"strings"
)

// Persona is a tone profile. It never changes retrieval behaviour.
type Persona string

const (
	Professor    Persona = "professor"
	ElderSibling Persona = "elder_sibling"
	Friend       Persona = "friend"
	Explorer     Persona = "explorer"
	Generic      Persona = "generic"
)

// Labels offered by the chat panel.
var Labels = []string{"Profesor", "Kakak Pintar", "Teman Baik", "Sang Penjelajah"}

// keywords are checked in order against the lowercased role string.
var keywords = []struct {
	keyword string
	persona Persona
}{
	{"profesor", Professor},
	{"professor", Professor},
	{"kakak", ElderSibling},
	{"teman", Friend},
	{"friend", Friend},
	{"penjelajah", Explorer},
	{"explorer", Explorer},
	{"guru", Generic},
	{"anak", Generic},
}

// Parse maps a caller-supplied role label to a persona by case-insensitive
// substring match. Unknown roles return (Generic, false).
func Parse(role string) (Persona, bool) {
	lower := strings.ToLower(strings.TrimSpace(role))
	if lower == "" {
		return Generic, false
	}
	for _, k := range keywords {
		if strings.Contains(lower, k.keyword) {
			return k.persona, true
		}
	}
	return Generic, false
}

type profile struct {
	name           string
	defaultAddress string
	addressPrefix  string
	directives     []string
	acknowledgment string // %s is the form of address
}

func (p Persona) profile() profile {
	switch p {
	case Professor:
		return profile{
			name:           "Profesor",
			defaultAddress: "Nak",
			addressPrefix:  "Nak ",
			directives: []string{
				"Bicaralah seperti seorang profesor yang bijak, tenang, dan berwawasan luas.",
				"Gunakan bahasa Indonesia baku yang sopan. Hindari bahasa gaul.",
				"Sebutkan istilah yang tepat, lalu sederhanakan dengan contoh sehari-hari.",
			},
			acknowledgment: "Baik, %s. Saya menemukan beberapa gambar yang relevan. Silakan pilih satu gambar yang ingin kita pelajari lebih dalam.",
		}
	case ElderSibling:
		return profile{
			name:           "Kakak Pintar",
			defaultAddress: "Dik",
			addressPrefix:  "Dik ",
			directives: []string{
				"Bicaralah seperti kakak yang sabar dan suka membantu adiknya belajar.",
				"Gunakan bahasa santai yang hangat, boleh menyebut dirimu \"Kakak\".",
				"Beri semangat dan pujian kecil saat pengguna bertanya.",
			},
			acknowledgment: "Nih %s, Kakak nemu beberapa gambar. Pilih satu ya, nanti Kakak jelasin!",
		}
	case Friend:
		return profile{
			name:           "Teman Baik",
			defaultAddress: "kawan",
			directives: []string{
				"Bicaralah seperti teman sebaya yang seru dan ramah.",
				"Gunakan bahasa sehari-hari yang ringan, sebut dirimu \"aku\".",
				"Jangan menggurui. Ajak pengguna ngobrol dengan antusias.",
			},
			acknowledgment: "Yuk lihat, %s! Aku nemu beberapa gambar nih. Mau belajar yang mana?",
		}
	case Explorer:
		return profile{
			name:           "Sang Penjelajah",
			defaultAddress: "penjelajah muda",
			directives: []string{
				"Bicaralah seperti seorang penjelajah yang penuh rasa ingin tahu dan petualangan.",
				"Bingkai penjelasan sebagai penemuan dalam sebuah ekspedisi.",
				"Ajak pengguna mengamati detail gambar seperti sedang meneliti temuan baru.",
			},
			acknowledgment: "Ekspedisi berhasil, %s! Kita menemukan beberapa gambar. Pilih satu untuk kita jelajahi!",
		}
	default:
		return profile{
			name:           "Asisten",
			defaultAddress: "kamu",
			directives: []string{
				"Bicaralah dengan ramah dan jelas seperti pemandu belajar.",
				"Gunakan bahasa Indonesia yang mudah dipahami anak-anak maupun orang dewasa.",
			},
			acknowledgment: "Atang menemukan beberapa gambar untuk %s. Pilih satu gambar untuk dipelajari, ya.",
		}
	}
}

// Name is the display name of the persona.
func (p Persona) Name() string {
	return p.profile().name
}

// Address returns the form of address, personalised when a user name is known.
func (p Persona) Address(userName string) string {
	prof := p.profile()
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return prof.defaultAddress
	}
	return prof.addressPrefix + userName
}

// Directives returns the tone instructions for the system prompt.
func (p Persona) Directives(userName string) []string {
	prof := p.profile()
	out := make([]string, 0, len(prof.directives)+1)
	out = append(out, prof.directives...)
	out = append(out, fmt.Sprintf("Panggil pengguna dengan sebutan \"%s\".", p.Address(userName)))
	return out
}

// Acknowledgment is the canned sentence sent after images in search mode.
func (p Persona) Acknowledgment(userName string) string {
	return fmt.Sprintf(p.profile().acknowledgment, p.Address(userName))
}

// ErrUnknownRole is returned by FromRole for labels no persona matches.
var ErrUnknownRole = errors.New("unknown persona role")

// FromRole is Parse for request boundaries: unknown labels are an error.
func FromRole(role string) (Persona, error) {
	p, ok := Parse(role)
	if !ok {
		return Generic, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return p, nil
}
