// Package prompts builds the prompt strings sent to the LLM collaborators.
package prompts

import (
	"fmt"
	"strings"
)

// categoricalValues documents the valid values for the enum-like columns so
// the generator produces comparable literals instead of guessing.
const categoricalValues = `these are the valid role names:
software engineer, senior software engineer, full stack developer,
data engineer, data scientist, machine learning engineer, genai engineer,
cloud architect, devops engineer, security engineer, product manager,
ai research scientist, business analyst, finance analyst,
people operations specialist

these are the valid skills:
python, sql, java, javascript, react, node.js, docker, kubernetes, aws, gcp,
azure, machine learning, deep learning, genai, langchain, prompt engineering,
data modeling, ci/cd, terraform, cybersecurity

these are the valid employment types:
full-time, contract, internship

these are the statuses:
active, resigned, terminated, on-leave`

// BuildSQLGenerationPrompt creates the prompt that turns a natural-language
// question about employees into a candidate SQL query. schemaDescription is
// the rendered table(column, ...) catalog.
func BuildSQLGenerationPrompt(question, schemaDescription string) string {
	var b strings.Builder

	b.WriteString("You are an expert SQL query generator for a PostgreSQL database.\n")
	b.WriteString("Your job is to convert natural language questions about employees into SQL queries.\n\n")

	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("- Use ONLY the tables and columns provided in the schema below.\n")
	b.WriteString("- Do NOT hallucinate or invent new column names.\n")
	b.WriteString("- Use ONLY SELECT queries.\n")
	b.WriteString("- NEVER use DELETE, UPDATE, INSERT, DROP, ALTER, TRUNCATE or CREATE.\n")
	b.WriteString("- Use proper JOINs based on foreign keys.\n")
	b.WriteString("- All string comparisons must be case-insensitive using LOWER().\n")
	b.WriteString("- When the user asks for \"top\" results, add LIMIT 20.\n")
	b.WriteString("- When selecting employees, prefer: SELECT e.*, r.name AS role_name.\n")
	b.WriteString("- If the user asks for specific columns, select those alone.\n\n")

	b.WriteString("======== DATABASE SCHEMA =========\n\n")
	b.WriteString(schemaDescription)
	b.WriteString("\n\n======== CATEGORICAL VALUES =========\n\n")
	b.WriteString(categoricalValues)
	b.WriteString("\n\n======== USER QUESTION =========\n")
	b.WriteString(question)
	b.WriteString("\n\n======== OUTPUT FORMAT RULES ========\n\n")
	b.WriteString("Return ONLY pure SQL.\n")
	b.WriteString("Do NOT include ``` characters, markdown, \"sql\" labels or explanations.\n")
	b.WriteString("The output must be a single executable SQL statement.\n")

	return b.String()
}

// BuildSQLSummaryPrompt creates the prompt that summarizes structured query
// results into a human-readable answer.
func BuildSQLSummaryPrompt(question, sqlQuery, rows string) string {
	return fmt.Sprintf(`You are an AI assistant that summarizes database query results for HR or analytics purposes.

Your job is to read the user's question, the SQL query used, and the database
rows returned, and produce a clear, helpful, human-readable answer.

RULES:
- Give a brief summary if many rows.
- Mention key fields like name, role, years_experience, salary, domain, location.
- Do NOT output raw SQL or JSON.
- Be concise but informative.

Format your answer in clean markdown: bullet points, bold for names and
roles, tables if multiple rows.

USER QUESTION:
%s

SQL EXECUTED:
%s

DATABASE ROWS:
%s

Now summarize the results in a natural readable way:`, question, sqlQuery, rows)
}

// BuildVectorSummaryPrompt creates the prompt that summarizes fallback
// retrieval output into a human-readable answer.
func BuildVectorSummaryPrompt(question, retrieved string) string {
	return fmt.Sprintf(`You are an AI assistant that summarizes search results for HR or analytics purposes.

Your job is to read the user's question and the retrieved content, and
produce a clear, helpful, human-readable answer.

RULES:
- Give a brief summary if many results.
- Mention key fields like name, role, years_experience, salary, domain, location.
- Do NOT output raw SQL or JSON.
- Be concise but informative.

Format your answer in clean markdown: bullet points, bold for names and
roles, tables if multiple rows.

USER QUESTION:
%s

RETRIEVED CONTENT:
%s

Now summarize the results in a natural readable way:`, question, retrieved)
}
