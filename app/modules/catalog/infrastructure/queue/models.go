package catalogqueue

// GenerateTargetsJob fills in missing daily targets for every active game.
type GenerateTargetsJob struct{}

// Kind returns the job type identifier for River
func (GenerateTargetsJob) Kind() string { return "generate_daily_targets" }

// QueueName is the dedicated River queue for catalog jobs.
const QueueName = "catalog"
