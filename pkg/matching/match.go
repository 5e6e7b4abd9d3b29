package matching

import (
	"context"
	"fmt"

	"github.com/azybler/graco/internal/compute"
)

// Match runs the multi-round heavy-edge matching algorithm over csr (n
// nodes, m edge-refs) and returns the finalized match array: match[i] is
// the coarse-node index fine node i belongs to, with matched pairs
// sharing the smaller of their two indices.
//
// Match records and submits its own command stream; it does not hold any
// buffer beyond the call. Isolated nodes (no live neighbors) settle into
// DEAD on their first proposal round and finalize to their own index,
// same as an unmatched node that simply ran out of rounds.
func Match(ctx context.Context, dev *compute.Device, csr CSR, n, m uint32, cfg Config) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}

	match := dev.NewBuffer(int(n))
	proposals := dev.NewBuffer(int(n))
	for i := 0; i < int(n); i++ {
		match.Set(i, packWord(StatusBlue, 0))
	}

	seeds := deriveRoundSeeds(cfg.PRNGSeed, cfg.Rounds)
	count := compute.Direct(n)

	enc := dev.NewEncoder()
	for round := uint32(0); round < cfg.Rounds; round++ {
		EncodeAssignNodeColors(enc, match, proposals, count, seeds[round])
		EncodeMakeProposals(enc, csr, match, proposals, count, int(m))
		EncodeFindMatches(enc, match, proposals, count)
	}
	EncodeFinalizeMatching(enc, match, count)

	if err := enc.Submit(ctx); err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}

	out := make([]uint32, n)
	copy(out, match.Slice())
	return out, nil
}
