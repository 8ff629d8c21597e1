package util

// ShardIndex maps a campaign id onto [0, shards).
// Negative ids are folded with a floored modulo so every id lands in range;
// shards <= 1 always yields 0.
func ShardIndex(campaignID int64, shards int) int {
	if shards <= 1 {
		return 0
	}
	i := campaignID % int64(shards)
	if i < 0 {
		i += int64(shards)
	}
	return int(i)
}
