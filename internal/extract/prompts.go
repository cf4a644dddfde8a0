package extract

import "github.com/vthunder/taskdesk/internal/llm"

// meetingSystemPrompt takes the current date (YYYY-MM-DD) and tomorrow's.
const meetingSystemPrompt = `You are an email analysis assistant. Your job is to extract structured meeting details from emails.
Return the extracted date in 'YYYY-MM-DD', time in 'HH:MM' (24-hour), and sentiment_score as an integer (0-10) rating the meeting's importance.
Today is %s. If no explicit date is found, use the date one day after the current date (%s).
If no time is mentioned, assume '09:00'.
If no importance is given, estimate it from urgency keywords and the title.`

const meetingUserPrompt = `Extract the meeting date, time, title, description, and its importance sentiment score (0-10) from the given email.
Return only a JSON object with 'date', 'time', 'title', 'description', and 'sentiment_score'.

Email Content: %s`

// taskSystemPrompt takes the current date.
const taskSystemPrompt = `You are an email analysis assistant. Extract task details including title and date from emails.
Today is %s. Return the date in 'YYYY-MM-DD'. Resolve relative dates ("Friday", "next week") against today.`

const classifySystemPrompt = `Classify the email as 'Task Creation', 'Meeting Schedule', or 'Both'.
Use 'Both' only when the email asks for a meeting and also assigns work to be done.`

var meetingSchema = &llm.Schema{
	Name: "MeetingInfo",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date":            map[string]any{"type": "string", "description": "Meeting date in YYYY-MM-DD format"},
			"time":            map[string]any{"type": "string", "description": "Meeting time in HH:MM format"},
			"title":           map[string]any{"type": "string", "description": "Title of the meeting"},
			"sentiment_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 10, "description": "Importance of the meeting on a scale of 0-10"},
			"description":     map[string]any{"type": "string", "description": "Description of the meeting"},
		},
		"required": []string{"date", "time", "title", "sentiment_score", "description"},
	},
}

var taskSchema = &llm.Schema{
	Name: "TaskInfo",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date":  map[string]any{"type": "string", "description": "Task due date in YYYY-MM-DD format"},
			"title": map[string]any{"type": "string", "description": "Title of the task"},
		},
		"required": []string{"date", "title"},
	},
}

var classificationSchema = &llm.Schema{
	Name: "EmailClassification",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type": "string",
				"enum": []string{string(CategoryTask), string(CategoryMeeting), string(CategoryBoth)},
			},
		},
		"required": []string{"category"},
	},
}
