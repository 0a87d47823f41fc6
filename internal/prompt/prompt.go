// Package prompt holds the fixed prompt templates for each pipeline stage.
// Templates are configuration-like content: given their slot values they
// deterministically produce a complete prompt string.
package prompt

import "strings"

// ApprovalSentinel is the exact phrase the critique template instructs the
// model to emit when no issues remain. The loop controller matches it as an
// exact substring; fuzzy matching would make the termination oracle
// unauditable.
const ApprovalSentinel = "No issues found."

const outlineTemplate = `You are a world-class product manager. Your task is to create a structured
outline for a Product Requirements Document (PRD) based on a given project idea.

The outline should cover all standard sections of a PRD, including:
1.  Executive Summary
2.  Problem Statement & User Personas
3.  Goals & Success Metrics
4.  Functional Requirements (Features)
5.  Non-Functional Requirements (Performance, Security, etc.)
6.  Out-of-Scope Items
7.  Risks & Mitigations

Please generate a Markdown-formatted outline for the following project idea:

**Project Idea:** "{idea}"

**Instructions:**
- Use Markdown headings to structure the document.
- For each section, include a brief, one-sentence placeholder description of
  what it will contain.
- Do NOT write the full content of the PRD yet. Just the outline.
`

const draftTemplate = `You are a world-class product manager. Your task is to expand a given PRD
outline into a full first draft.

Use the provided outline and flesh out each section with detailed, clear, and
concise content. Make reasonable assumptions where necessary, but clearly
state them.

**PRD Outline to Draft:**
` + "```markdown\n{outline}\n```" + `

**Instructions:**
- Write comprehensive content for every section of the outline.
- Use clear and professional language.
- Format the output as a complete Markdown document.
- Ensure the functional requirements are specific and actionable.
- The draft should be complete enough for a stakeholder to understand the
  entire scope of the project.
`

const critiqueTemplate = `You are a meticulous and critical product manager. Your task is to review a
draft of a Product Requirements Document (PRD) and provide constructive
feedback.

Analyze the following PRD draft for clarity, completeness, coherence, and
realism. Identify any ambiguities, contradictions, or missing information.

**PRD Draft to Critique:**
` + "```markdown\n{draft}\n```" + `

**Instructions:**
- Provide your critique as a list of bullet points.
- For each point, specify the section of the PRD it refers to.
- Focus on actionable feedback that can be used to improve the document.
- Be ruthless but fair. The goal is to make the PRD as strong as possible.
- If you find no issues, simply respond with "No issues found."
`

const reviseTemplate = `You are a world-class product manager. Your task is to revise a Product
Requirements Document (PRD) draft based on a set of critiques.

Carefully review the original draft and the provided feedback. Update the PRD
to address all the points raised in the critique.

**Original PRD Draft:**
` + "```markdown\n{draft}\n```" + `

**Critique to Address:**
` + "```\n{critique}\n```" + `

**Instructions:**
- Produce a new, complete version of the PRD in Markdown format.
- Incorporate all the suggested changes from the critique.
- Ensure the revised document is coherent and consistent.
- Do not include the critique in the final output. Only the revised PRD.
`

// render substitutes named slots of the form {name} into a template.
func render(template string, slots map[string]string) string {
	out := template
	for name, value := range slots {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// Outline renders the outline-generation prompt for a project idea.
func Outline(idea string) string {
	return render(outlineTemplate, map[string]string{"idea": idea})
}

// Draft renders the draft-generation prompt for an outline.
func Draft(outline string) string {
	return render(draftTemplate, map[string]string{"outline": outline})
}

// Critique renders the critique prompt for a draft.
func Critique(draft string) string {
	return render(critiqueTemplate, map[string]string{"draft": draft})
}

// Revise renders the revision prompt for a draft and its critique.
func Revise(draft, critique string) string {
	return render(reviseTemplate, map[string]string{"draft": draft, "critique": critique})
}
