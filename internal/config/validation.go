package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct constraints and the cross-field rules of the scheduler section.
// Missing credentials are reported by their environment variable names.
func (c *Config) Validate() error {
	if missing := c.missingCredentials(); len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}

	poll, ok := c.Scheduler.Tasks[TaskPollStatuses]
	if !ok || !poll.Enabled {
		return fmt.Errorf("scheduler task %q must be enabled", TaskPollStatuses)
	}
	if poll.Interval <= 0 {
		return fmt.Errorf("scheduler task %q needs an interval", TaskPollStatuses)
	}

	names := make([]string, 0, len(c.Scheduler.Tasks))
	for name := range c.Scheduler.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		task := c.Scheduler.Tasks[name]
		if task.Enabled && task.Interval == 0 && task.Schedule == "" {
			return fmt.Errorf("scheduler task %q has neither interval nor schedule", name)
		}
		if task.Interval > 0 && task.Schedule != "" {
			return fmt.Errorf("scheduler task %q has both interval and schedule", name)
		}
	}

	return nil
}

func (c *Config) missingCredentials() []string {
	var missing []string
	if c.Practicum.Token == "" {
		missing = append(missing, EnvPracticumToken)
	}
	if c.Telegram.Token == "" {
		missing = append(missing, EnvTelegramToken)
	}
	if c.Telegram.ChatID == "" {
		missing = append(missing, EnvTelegramChatID)
	}
	return missing
}
