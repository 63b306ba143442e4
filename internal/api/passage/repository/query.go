package passageRepository

const (
	queryCreateTable = `
		CREATE TABLE IF NOT EXISTS passage_history (
			id               VARCHAR(26) PRIMARY KEY,
			grade            TEXT        NOT NULL,
			mode             TEXT        NOT NULL,
			voice            TEXT        NOT NULL,
			duration         INTEGER     NOT NULL,
			total_techniques INTEGER     NOT NULL,
			include_randori  BOOLEAN     NOT NULL DEFAULT FALSE,
			techniques       JSONB       NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			completed_at     TIMESTAMPTZ NOT NULL
		)
	`

	queryCreateRecord = `
		INSERT INTO passage_history (
			id,
			grade,
			mode,
			voice,
			duration,
			total_techniques,
			include_randori,
			techniques,
			created_at,
			completed_at
		) VALUES (
			:id,
			:grade,
			:mode,
			:voice,
			:duration,
			:total_techniques,
			:include_randori,
			:techniques,
			:created_at,
			:completed_at
		)
		ON CONFLICT (id) DO NOTHING
	`

	queryGetRecordByID = `
		SELECT
			id,
			grade,
			mode,
			voice,
			duration,
			total_techniques,
			include_randori,
			techniques,
			created_at,
			completed_at
		FROM passage_history
		WHERE id = :id
	`

	queryListRecords = `
		SELECT
			id,
			grade,
			mode,
			voice,
			duration,
			total_techniques,
			include_randori,
			techniques,
			created_at,
			completed_at
		FROM passage_history
		WHERE (:grade = '' OR grade = :grade)
		ORDER BY completed_at DESC
		LIMIT :limit
	`
)
