package lightmap

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Report summarises one bake run.
type Report struct {
	RunID          uuid.UUID
	Groups         int
	FacesBaked     int
	FacesFailed    int
	FacesExcluded  int
	LightsUsed     int
	LightsRejected int
	Overflowed     int // groups placed outside the atlas
	Duration       time.Duration
}

// Fields returns the report as structured log fields.
func (r Report) Fields() []zap.Field {
	return []zap.Field{
		zap.Stringer("run", r.RunID),
		zap.Int("groups", r.Groups),
		zap.Int("facesBaked", r.FacesBaked),
		zap.Int("facesFailed", r.FacesFailed),
		zap.Int("facesExcluded", r.FacesExcluded),
		zap.Int("lightsUsed", r.LightsUsed),
		zap.Int("lightsRejected", r.LightsRejected),
		zap.Int("overflowed", r.Overflowed),
		zap.Duration("duration", r.Duration),
	}
}

func (r Report) String() string {
	return fmt.Sprintf("run %s: %d groups, %d faces baked, %d failed, %d excluded, %d lights (%d rejected), %d overflowed, %s",
		r.RunID, r.Groups, r.FacesBaked, r.FacesFailed, r.FacesExcluded,
		r.LightsUsed, r.LightsRejected, r.Overflowed, r.Duration.Round(time.Millisecond))
}
