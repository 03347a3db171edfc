package middleware

import (
	"aigate-api/internal/cost"
	"aigate-api/internal/ctx"
	"aigate-api/internal/shared"
)

func FixedCost(p cost.Policy, op cost.Operation) CostFunc {
	return func(*ctx.Context) (uint64, error) {
		return p.Fixed(op), nil
	}
}

// PerFileCost charges count × the per-file rate of a file batch.
func PerFileCost(p cost.Policy) CostFunc {
	return func(c *ctx.Context) (uint64, error) {
		files, err := batchFiles(c)
		if err != nil {
			return 0, err
		}
		return p.PerItem(len(files)), nil
	}
}

// SizeScaledCost charges by the decoded size of every file in the batch.
func SizeScaledCost(p cost.Policy) CostFunc {
	return func(c *ctx.Context) (uint64, error) {
		files, err := batchFiles(c)
		if err != nil {
			return 0, err
		}
		return p.CalculateCost(shared.Sizes(files)), nil
	}
}

// batchFiles decodes the batch once and keeps it on the context for the
// handler.
func batchFiles(c *ctx.Context) ([]shared.DecodedFile, error) {
	if files, ok := c.Get(shared.BatchFilesKey).([]shared.DecodedFile); ok {
		return files, nil
	}
	body, err := c.RequestBody()
	if err != nil {
		return nil, shared.BodyReadError(err)
	}
	files, err := shared.ParseBatch(body)
	if err != nil {
		return nil, err
	}
	c.Set(shared.BatchFilesKey, files)
	return files, nil
}
