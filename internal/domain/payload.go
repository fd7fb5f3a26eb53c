package domain

// Payload is the closed set of typed signal payloads.
// Variants are declared in this package only.
type Payload interface {
	// PayloadType returns the variant name written to payload_type.
	PayloadType() string
	payload()
}

// MessageSent records an outbound message to a recipient.
type MessageSent struct {
	Channel   string  `json:"channel"`
	Recipient string  `json:"recipient"`
	Subject   *string `json:"subject"`
}

// ReplyReceived records an inbound reply from a sender.
type ReplyReceived struct {
	Channel string  `json:"channel"`
	Sender  string  `json:"sender"`
	Subject *string `json:"subject"`
}

// MeetingBooked records a meeting scheduled with a participant.
type MeetingBooked struct {
	Participant string  `json:"participant"`
	MeetingID   *string `json:"meeting_id"`
}

// RevenueEvent records money attributed to an account.
type RevenueEvent struct {
	Account  string  `json:"account"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// SocialPostSeen records a post observed on a social platform.
type SocialPostSeen struct {
	Platform     string `json:"platform"`
	AuthorHandle string `json:"author_handle"`
	PostURL      string `json:"post_url"`
	Text         string `json:"text"`
	Action       string `json:"action"`
}

// ProfileSnapshotSeen records a profile observation.
// Unknown social types map to it in lenient mode.
type ProfileSnapshotSeen struct {
	Platform     string  `json:"platform"`
	AuthorHandle string  `json:"author_handle"`
	ProfileURL   string  `json:"profile_url"`
	Text         *string `json:"text"`
}

// TokenTradeSeen records a buy or sell of a token by a wallet.
type TokenTradeSeen struct {
	Chain     string   `json:"chain"`
	TokenMint string   `json:"token_mint"`
	Wallet    string   `json:"wallet"`
	Side      string   `json:"side"`
	Amount    float64  `json:"amount"`
	PriceUSD  *float64 `json:"price_usd"`
}

// HolderChangeSeen records a change in a wallet's token balance.
type HolderChangeSeen struct {
	Chain     string  `json:"chain"`
	TokenMint string  `json:"token_mint"`
	Wallet    string  `json:"wallet"`
	Delta     float64 `json:"delta"`
}

// SupplyChangeSeen records a new total supply for a token.
type SupplyChangeSeen struct {
	Chain     string   `json:"chain"`
	TokenMint string   `json:"token_mint"`
	NewSupply float64  `json:"new_supply"`
	Delta     *float64 `json:"delta"`
}

// LiquidityEventSeen records liquidity added to or removed from a pool.
type LiquidityEventSeen struct {
	Chain     string  `json:"chain"`
	TokenMint string  `json:"token_mint"`
	Pool      string  `json:"pool"`
	Action    string  `json:"action"`
	Amount    float64 `json:"amount"`
}

// TokenMetadataUpdated records one changed metadata field of a token.
// Unknown chain types map to it in lenient mode.
type TokenMetadataUpdated struct {
	Chain     string `json:"chain"`
	TokenMint string `json:"token_mint"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

// RewardUpdated records a reward balance of a wallet in a program.
type RewardUpdated struct {
	Chain     string  `json:"chain"`
	TokenMint string  `json:"token_mint"`
	Wallet    string  `json:"wallet"`
	Program   string  `json:"program"`
	Amount    float64 `json:"amount"`
}

// SeasonInitialized records the start of a season.
type SeasonInitialized struct {
	Chain    string  `json:"chain"`
	SeasonID string  `json:"season_id"`
	GameID   *string `json:"game_id"`
}

// SeasonGameCreated records a game created within a season.
type SeasonGameCreated struct {
	Chain    string `json:"chain"`
	SeasonID string `json:"season_id"`
	GameID   string `json:"game_id"`
	Creator  string `json:"creator"`
}

// SeasonRewardDistributed records rewards paid into a game pool.
type SeasonRewardDistributed struct {
	Chain    string  `json:"chain"`
	SeasonID string  `json:"season_id"`
	GameID   string  `json:"game_id"`
	Pool     string  `json:"pool"`
	Amount   float64 `json:"amount"`
}

// SeasonStakeRecorded records a wallet stake in a game.
type SeasonStakeRecorded struct {
	Chain    string  `json:"chain"`
	SeasonID string  `json:"season_id"`
	GameID   string  `json:"game_id"`
	Wallet   string  `json:"wallet"`
	Amount   float64 `json:"amount"`
}

// SeasonEnded records the end of a season game with its final status.
// Unknown season types map to it with status "unknown" in lenient mode.
type SeasonEnded struct {
	Chain    string `json:"chain"`
	SeasonID string `json:"season_id"`
	GameID   string `json:"game_id"`
	Status   string `json:"status"`
}

// SeasonRewardClaimed records a reward claimed by a wallet.
type SeasonRewardClaimed struct {
	Chain    string  `json:"chain"`
	SeasonID string  `json:"season_id"`
	GameID   string  `json:"game_id"`
	Wallet   string  `json:"wallet"`
	Amount   float64 `json:"amount"`
}

func (MessageSent) PayloadType() string             { return "MessageSent" }
func (ReplyReceived) PayloadType() string           { return "ReplyReceived" }
func (MeetingBooked) PayloadType() string           { return "MeetingBooked" }
func (RevenueEvent) PayloadType() string            { return "RevenueEvent" }
func (SocialPostSeen) PayloadType() string          { return "SocialPostSeen" }
func (ProfileSnapshotSeen) PayloadType() string     { return "ProfileSnapshotSeen" }
func (TokenTradeSeen) PayloadType() string          { return "TokenTradeSeen" }
func (HolderChangeSeen) PayloadType() string        { return "HolderChangeSeen" }
func (SupplyChangeSeen) PayloadType() string        { return "SupplyChangeSeen" }
func (LiquidityEventSeen) PayloadType() string      { return "LiquidityEventSeen" }
func (TokenMetadataUpdated) PayloadType() string    { return "TokenMetadataUpdated" }
func (RewardUpdated) PayloadType() string           { return "RewardUpdated" }
func (SeasonInitialized) PayloadType() string       { return "SeasonInitialized" }
func (SeasonGameCreated) PayloadType() string       { return "SeasonGameCreated" }
func (SeasonRewardDistributed) PayloadType() string { return "SeasonRewardDistributed" }
func (SeasonStakeRecorded) PayloadType() string     { return "SeasonStakeRecorded" }
func (SeasonEnded) PayloadType() string             { return "SeasonEnded" }
func (SeasonRewardClaimed) PayloadType() string     { return "SeasonRewardClaimed" }

func (MessageSent) payload()             {}
func (ReplyReceived) payload()           {}
func (MeetingBooked) payload()           {}
func (RevenueEvent) payload()            {}
func (SocialPostSeen) payload()          {}
func (ProfileSnapshotSeen) payload()     {}
func (TokenTradeSeen) payload()          {}
func (HolderChangeSeen) payload()        {}
func (SupplyChangeSeen) payload()        {}
func (LiquidityEventSeen) payload()      {}
func (TokenMetadataUpdated) payload()    {}
func (RewardUpdated) payload()           {}
func (SeasonInitialized) payload()       {}
func (SeasonGameCreated) payload()       {}
func (SeasonRewardDistributed) payload() {}
func (SeasonStakeRecorded) payload()     {}
func (SeasonEnded) payload()             {}
func (SeasonRewardClaimed) payload()     {}
