package repositories

// Repositories holds all the repository instances
type Repositories struct {
	StateRepository   *StateRepository
	SchoolRepository  *SchoolRepository
	StudentRepository *StudentRepository
}

// Options carries per-table batch sizes and the shared parameter limit.
type Options struct {
	StateBatchSize   int
	SchoolBatchSize  int
	StudentBatchSize int
	MaxParams        int
}

// NewRepositories initializes all repositories
func NewRepositories(db DBTX, opts Options) *Repositories {
	return &Repositories{
		StateRepository:   NewStateRepository(db, BatchOptions{BatchSize: opts.StateBatchSize, MaxParams: opts.MaxParams}),
		SchoolRepository:  NewSchoolRepository(db, BatchOptions{BatchSize: opts.SchoolBatchSize, MaxParams: opts.MaxParams}),
		StudentRepository: NewStudentRepository(db, BatchOptions{BatchSize: opts.StudentBatchSize, MaxParams: opts.MaxParams}),
	}
}
