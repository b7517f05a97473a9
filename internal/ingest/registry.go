package ingest

import "time"

// TrackedEntity is one protocol or project the ingestors watch. Program IDs
// drive on-chain ingestion, GitHub drives dev ingestion; either may be empty.
type TrackedEntity struct {
	Key        string
	Label      string
	Kind       string
	ProgramIDs []string
	GitHub     string // owner/repo
	FirstSeen  time.Time
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// TrackedEntities is the default watch list for live ingestion.
var TrackedEntities = []TrackedEntity{
	{
		Key:   "jupiter",
		Label: "Jupiter",
		Kind:  "defi",
		ProgramIDs: []string{
			"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",
			"JUP4Fb2cqiRUcaTHdrPC8h2gNsA2ETXiPDD33WcGuJB",
		},
		GitHub:    "jup-ag/jupiter-core",
		FirstSeen: mustTime("2022-10-01T00:00:00Z"),
	},
	{
		Key:        "jupiter-perps",
		Label:      "Jupiter Perpetuals",
		Kind:       "defi",
		ProgramIDs: []string{"PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu"},
		GitHub:     "jup-ag/perpetuals",
		FirstSeen:  mustTime("2024-01-15T00:00:00Z"),
	},
	{
		Key:        "drift",
		Label:      "Drift Protocol",
		Kind:       "defi",
		ProgramIDs: []string{"dRiftyHA39MWEi3m9aunc5MzRF1JYuBsbn6VPcn33UH"},
		GitHub:     "drift-labs/protocol-v2",
		FirstSeen:  mustTime("2022-11-01T00:00:00Z"),
	},
	{
		Key:   "raydium",
		Label: "Raydium",
		Kind:  "defi",
		ProgramIDs: []string{
			"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
			"CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK",
		},
		GitHub:    "raydium-io/raydium-amm",
		FirstSeen: mustTime("2021-03-01T00:00:00Z"),
	},
	{
		Key:        "orca",
		Label:      "Orca (Whirlpool)",
		Kind:       "defi",
		ProgramIDs: []string{"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"},
		GitHub:     "orca-so/whirlpools",
		FirstSeen:  mustTime("2022-03-01T00:00:00Z"),
	},
	{
		Key:        "phoenix",
		Label:      "Phoenix",
		Kind:       "defi",
		ProgramIDs: []string{"PhoeNiXZ8ByJGLkxNfZRnkUfjvmuYqLR89jjFHGqdXY"},
		GitHub:     "Ellipsis-Labs/phoenix-v1",
		FirstSeen:  mustTime("2023-06-01T00:00:00Z"),
	},
	{
		Key:        "marginfi",
		Label:      "Marginfi",
		Kind:       "defi",
		ProgramIDs: []string{"MFv2hWf31Z9kbCa1snEPYctwafyhdvnV7FZnsebVacA"},
		GitHub:     "mrgnlabs/marginfi-v2",
		FirstSeen:  mustTime("2023-04-01T00:00:00Z"),
	},
	{
		Key:        "kamino",
		Label:      "Kamino Finance",
		Kind:       "defi",
		ProgramIDs: []string{"KLend2g3cP87fffoy8q1mQqGKjrxjC8boSyAYavgmjD"},
		GitHub:     "Kamino-Finance/klend",
		FirstSeen:  mustTime("2023-08-01T00:00:00Z"),
	},
	{
		Key:        "pyth",
		Label:      "Pyth Network",
		Kind:       "oracle",
		ProgramIDs: []string{"FsJ3A3u2vn5cTVofAjvy6y5kwABJAqYWpe4975bi2epH"},
		GitHub:     "pyth-network/pyth-client",
		FirstSeen:  mustTime("2021-08-01T00:00:00Z"),
	},
	{
		Key:        "jito",
		Label:      "Jito",
		Kind:       "lst",
		ProgramIDs: []string{"Jito4APyf642JPZPx3hGc6WWJ8zPKtRbRs4P815Awbb"},
		GitHub:     "jito-foundation/jito-solana",
		FirstSeen:  mustTime("2022-11-01T00:00:00Z"),
	},
	{
		Key:        "marinade",
		Label:      "Marinade",
		Kind:       "lst",
		ProgramIDs: []string{"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD"},
		GitHub:     "marinade-finance/liquid-staking-program",
		FirstSeen:  mustTime("2021-08-01T00:00:00Z"),
	},
	{
		Key:        "tensor",
		Label:      "Tensor",
		Kind:       "nft",
		ProgramIDs: []string{"TSWAPaqyCSx2KABk68Shruf4rp7CxcNi8hAsbdwmHbN"},
		GitHub:     "tensor-foundation/tensorswap-sdk",
		FirstSeen:  mustTime("2022-12-01T00:00:00Z"),
	},
	{
		Key:        "helium",
		Label:      "Helium",
		Kind:       "depin",
		ProgramIDs: []string{"hemjuPXBpNvggtaUnN1MwT3wrdhttKEfosTcc2P9Pg8"},
		GitHub:     "helium/helium-program-library",
		FirstSeen:  mustTime("2023-04-01T00:00:00Z"),
	},
	{
		Key:        "wormhole",
		Label:      "Wormhole",
		Kind:       "bridge",
		ProgramIDs: []string{"worm2ZoG2kUd4vFXhvjh93UUH596ayRfgQ2MgjNMTth"},
		GitHub:     "wormhole-foundation/wormhole",
		FirstSeen:  mustTime("2021-09-01T00:00:00Z"),
	},
	{
		Key:       "dialect",
		Label:     "Dialect",
		Kind:      "social",
		GitHub:    "dialectlabs/protocol",
		FirstSeen: mustTime("2022-03-01T00:00:00Z"),
	},
	{
		Key:       "squads",
		Label:     "Squads",
		Kind:      "dao",
		GitHub:    "Squads-Protocol/v4",
		FirstSeen: mustTime("2023-01-01T00:00:00Z"),
	},
}
