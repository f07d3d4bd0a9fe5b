package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// CoursesColumns holds the columns for the "courses" table.
	CoursesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "image_src", Type: field.TypeString, Default: ""},
	}
	// CoursesTable holds the schema information for the "courses" table.
	CoursesTable = &schema.Table{
		Name:       "courses",
		Columns:    CoursesColumns,
		PrimaryKey: []*schema.Column{CoursesColumns[0]},
	}

	// UnitsColumns holds the columns for the "units" table.
	UnitsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "sort_order", Type: field.TypeInt},
		{Name: "course_id", Type: field.TypeInt64},
	}
	// UnitsTable holds the schema information for the "units" table.
	UnitsTable = &schema.Table{
		Name:       "units",
		Columns:    UnitsColumns,
		PrimaryKey: []*schema.Column{UnitsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "units_courses_units",
				Columns:    []*schema.Column{UnitsColumns[4]},
				RefColumns: []*schema.Column{CoursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "unit_course_id_sort_order", Columns: []*schema.Column{UnitsColumns[4], UnitsColumns[3]}},
		},
	}

	// LessonsColumns holds the columns for the "lessons" table.
	LessonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "sort_order", Type: field.TypeInt},
		{Name: "unit_id", Type: field.TypeInt64},
	}
	// LessonsTable holds the schema information for the "lessons" table.
	LessonsTable = &schema.Table{
		Name:       "lessons",
		Columns:    LessonsColumns,
		PrimaryKey: []*schema.Column{LessonsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "lessons_units_lessons",
				Columns:    []*schema.Column{LessonsColumns[3]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "lesson_unit_id_sort_order", Columns: []*schema.Column{LessonsColumns[3], LessonsColumns[2]}},
		},
	}

	// ChallengesColumns holds the columns for the "challenges" table.
	ChallengesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "type", Type: field.TypeEnum, Enums: []string{"SELECT", "ASSIST"}},
		{Name: "question", Type: field.TypeString},
		{Name: "sort_order", Type: field.TypeInt},
		{Name: "lesson_id", Type: field.TypeInt64},
	}
	// ChallengesTable holds the schema information for the "challenges" table.
	ChallengesTable = &schema.Table{
		Name:       "challenges",
		Columns:    ChallengesColumns,
		PrimaryKey: []*schema.Column{ChallengesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "challenges_lessons_challenges",
				Columns:    []*schema.Column{ChallengesColumns[4]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "challenge_lesson_id_sort_order", Columns: []*schema.Column{ChallengesColumns[4], ChallengesColumns[3]}},
		},
	}

	// ChallengeOptionsColumns holds the columns for the "challenge_options" table.
	ChallengeOptionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "text", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool},
		{Name: "image_src", Type: field.TypeString, Nullable: true},
		{Name: "audio_src", Type: field.TypeString, Nullable: true},
		{Name: "challenge_id", Type: field.TypeInt64},
	}
	// ChallengeOptionsTable holds the schema information for the "challenge_options" table.
	ChallengeOptionsTable = &schema.Table{
		Name:       "challenge_options",
		Columns:    ChallengeOptionsColumns,
		PrimaryKey: []*schema.Column{ChallengeOptionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "challenge_options_challenges_options",
				Columns:    []*schema.Column{ChallengeOptionsColumns[5]},
				RefColumns: []*schema.Column{ChallengesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// UserProgressColumns holds the columns for the "user_progress" table.
	UserProgressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Unique: true},
		{Name: "user_name", Type: field.TypeString, Default: "User"},
		{Name: "user_image_src", Type: field.TypeString, Default: "/mascot.svg"},
		{Name: "hearts", Type: field.TypeInt, Default: 5},
		{Name: "points", Type: field.TypeInt, Default: 0},
		{Name: "version", Type: field.TypeInt64, Default: 1},
		{Name: "active_course_id", Type: field.TypeInt64, Nullable: true},
	}
	// UserProgressTable holds the schema information for the "user_progress" table.
	UserProgressTable = &schema.Table{
		Name:       "user_progress",
		Columns:    UserProgressColumns,
		PrimaryKey: []*schema.Column{UserProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_progress_courses_active_course",
				Columns:    []*schema.Column{UserProgressColumns[6]},
				RefColumns: []*schema.Column{CoursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "userprogress_points", Columns: []*schema.Column{UserProgressColumns[4]}},
		},
	}

	// ChallengeProgressColumns holds the columns for the "challenge_progress" table.
	ChallengeProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "challenge_id", Type: field.TypeInt64},
	}
	// ChallengeProgressTable holds the schema information for the "challenge_progress" table.
	ChallengeProgressTable = &schema.Table{
		Name:       "challenge_progress",
		Columns:    ChallengeProgressColumns,
		PrimaryKey: []*schema.Column{ChallengeProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "challenge_progress_challenges_progress",
				Columns:    []*schema.Column{ChallengeProgressColumns[3]},
				RefColumns: []*schema.Column{ChallengesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "challengeprogress_user_id_challenge_id", Unique: true, Columns: []*schema.Column{ChallengeProgressColumns[1], ChallengeProgressColumns[3]}},
		},
	}

	// UserSubscriptionsColumns holds the columns for the "user_subscriptions" table.
	UserSubscriptionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeString, Unique: true},
		{Name: "stripe_customer_id", Type: field.TypeString, Unique: true},
		{Name: "stripe_subscription_id", Type: field.TypeString, Unique: true},
		{Name: "stripe_price_id", Type: field.TypeString},
		{Name: "stripe_current_period_end", Type: field.TypeTime},
	}
	// UserSubscriptionsTable holds the schema information for the "user_subscriptions" table.
	UserSubscriptionsTable = &schema.Table{
		Name:       "user_subscriptions",
		Columns:    UserSubscriptionsColumns,
		PrimaryKey: []*schema.Column{UserSubscriptionsColumns[0]},
	}

	// AttemptEventsColumns holds the columns for the "attempt_events" table.
	AttemptEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeString},
		{Name: "challenge_id", Type: field.TypeInt64},
		{Name: "lesson_id", Type: field.TypeInt64},
		{Name: "correct", Type: field.TypeBool},
		{Name: "outcome", Type: field.TypeString},
		{Name: "hearts_after", Type: field.TypeInt},
		{Name: "points_after", Type: field.TypeInt},
	}
	// AttemptEventsTable holds the schema information for the "attempt_events" table.
	AttemptEventsTable = &schema.Table{
		Name:       "attempt_events",
		Columns:    AttemptEventsColumns,
		PrimaryKey: []*schema.Column{AttemptEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attemptevent_user_id_sequence", Columns: []*schema.Column{AttemptEventsColumns[3], AttemptEventsColumns[1]}},
		},
	}

	// GlobalSequenceColumns holds the columns for the "global_sequence" table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// GlobalSequenceTable holds the single counter row for event ordering.
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		CoursesTable,
		UnitsTable,
		LessonsTable,
		ChallengesTable,
		ChallengeOptionsTable,
		UserProgressTable,
		ChallengeProgressTable,
		UserSubscriptionsTable,
		AttemptEventsTable,
		GlobalSequenceTable,
	}
)

func init() {
	UnitsTable.ForeignKeys[0].RefTable = CoursesTable
	LessonsTable.ForeignKeys[0].RefTable = UnitsTable
	ChallengesTable.ForeignKeys[0].RefTable = LessonsTable
	ChallengeOptionsTable.ForeignKeys[0].RefTable = ChallengesTable
	UserProgressTable.ForeignKeys[0].RefTable = CoursesTable
	ChallengeProgressTable.ForeignKeys[0].RefTable = ChallengesTable
}

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
