package orchestrator

// Fuse averages the judge's estimate with the requested target.
func Fuse(judged float64, target int) float64 {
	return (judged + float64(target)) / 2
}
