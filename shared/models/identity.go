package models

import "time"

// AuthMethod - способ, которым была получена личность.
type AuthMethod string

const (
	AuthMethodEmail  AuthMethod = "email"
	AuthMethodWallet AuthMethod = "wallet"
)

// ProfileCounters - счетчики профиля создателя.
type ProfileCounters struct {
	GamesCreated int `json:"gamesCreated"`
	TotalPlays   int `json:"totalPlays"`
	Followers    int `json:"followers"`
}

// Identity - текущая личность на устройстве (запись rpg-user).
type Identity struct {
	ID            string          `json:"id"`
	Email         string          `json:"email,omitempty"`
	WalletAddress string          `json:"walletAddress,omitempty"`
	ChainID       string          `json:"chainId,omitempty"`
	Username      string          `json:"username"`
	Avatar        string          `json:"avatar"`
	Bio           string          `json:"bio,omitempty"`
	AuthMethod    AuthMethod      `json:"authMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
	Profile       ProfileCounters `json:"profile"`
}

// RosterEntry - запись в списке всех известных устройству личностей (rpg-users).
// Хеш пароля хранится только здесь и никогда не попадает в rpg-user.
type RosterEntry struct {
	Identity
	PasswordHash string `json:"passwordHash,omitempty"`
}

// ProfilePatch - частичное обновление профиля. nil-поля не трогаются.
type ProfilePatch struct {
	Username *string `json:"username,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	ChainID  *string `json:"chainId,omitempty"`
}

// IsEmpty сообщает, что патч ничего не меняет.
func (p ProfilePatch) IsEmpty() bool {
	return p.Username == nil && p.Bio == nil && p.Avatar == nil && p.ChainID == nil
}

// ApplyTo применяет патч к личности.
func (p ProfilePatch) ApplyTo(identity *Identity) {
	if p.Username != nil {
		identity.Username = *p.Username
	}
	if p.Bio != nil {
		identity.Bio = *p.Bio
	}
	if p.Avatar != nil {
		identity.Avatar = *p.Avatar
	}
	if p.ChainID != nil {
		identity.ChainID = *p.ChainID
	}
}
