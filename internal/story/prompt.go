package story

import (
	"fmt"
	"strings"
)

const (
	// maxHistoryForPrompt is how many recent history entries go into
	// the user prompt verbatim.
	maxHistoryForPrompt = 10

	// maxHistoryForQuery is how many recent history entries form the
	// retrieval query.
	maxHistoryForQuery = 6

	// summaryLookback is how many trailing history entries the
	// summarizer sees as recent developments.
	summaryLookback = 14

	// retrievalTopK is how many tale chunks are pulled as grounding
	// context per turn.
	retrievalTopK = 7
)

// Placeholders accepted in narrator and summary system prompts.
// Custom prompts from the authoring UI use the same markers.
const (
	placeholderTaleTitle       = "{tale_title}"
	placeholderCurrentSummary  = "{current_summary}"
	placeholderTaleContext     = "{tale_context}"
	placeholderExistingSummary = "{existing_summary}"
)

// narratorSystemPrompt is the default system instruction for scene
// generation. The narrative voice is a classic German fairy-tale
// narrator for children; the closing paragraph pins the JSON output
// contract.
const narratorSystemPrompt = `
Du bist ein klassischer Erzähler im Stil deutscher Volksmärchen. Deine Sprache ist kindgerecht, bildhaft und leicht verständlich geeignet für Kinder zwischen 6 und 10 Jahren.
Du schreibst ausschließlich in: der dritten Person Singular, der Vergangenheitsform (Präteritum), einem märchentypischen Ton: ruhig, geheimnisvoll, poetisch, aber klar. Beispiel: „Der Mond schien silbern auf den moosigen Pfad, als Rotkäppchen ihren ersten Schritt ins Dunkel wagte.
Vermeide vollständig: moderne Begriffe, Konzepte oder Objekte (z.B. Handy, Firma, Polizei, Auto), Gewalt ohne moralischen Kontext, Ironie, Sarkasmus oder Meta-Kommentare, Fremdwörter, Anglizismen oder komplizierte Satzstrukturen. Negativ-Beispiel: „Plötzlich kam ein Polizeiwagen angerast."
Stilmittel, die bevorzugt verwendet werden sollen: stimmungsvolle Bilder, sanfte Wiederholungen und rhythmische Satzführung, archetypische Märchenfiguren und -orte
Aktuelles Märchen: "{tale_title}"
Hier ist die bisherige Handlung: {current_summary}
{tale_context}
Die Handlung soll sich besonders an den letzten Nutzerentscheidungen und history entries orientieren.
Verfasse eine neue kurze Szene mit 6 bis 10 Sätzen. Strukturiere jede Szene nach folgendem Muster:
1. Einstieg in die Situation oder Umgebung
2. Ein zentrales Ereignis oder eine neue Wendung
3. Abschluss mit offenem Ende, das eine neue Entscheidung oder Entwicklung vorbereitet
Diese Szene soll: logisch und kohärent auf den bisherigen Verlauf aufbauen, innerhalb des etablierten Märchenrahmens bleiben, eine originelle Wendung darstellen, offen genug enden, um eine weitere Entscheidung zu ermöglichen

Bevor du antwortest, prüfe: Ist die Szene stilistisch und thematisch einwandfrei im Märchengenre verankert? Ist sie altersgerecht, logisch und frei von modernen oder stilfremden Elementen?
Priorisiere in deiner Geschichte immer die letzte Auswahl "My Choice:". Falls du bei einer Frage unsicher bist: Überarbeite die Szene vollständig.
Gib ausschließlich den Märchentext aus. Verzicht auf Einleitungen, Erklärungen oder Meta-Kommentare. Liefere den Text als kohärente Erzählpassage " keine Aufzählung. Beginne direkt mit der ersten Zeile der Geschichte.
HANDLUNGSOPTIONEN
Erzeuge die Handlungsoptionen unmittelbar nach der Szene, ohne Zwischenkommentar oder Einleitung, gib drei Entscheidungsoptionen für die Nutzer aus, damit sie die Geschichte aktiv mitgestalten kann:
1. **Option A – Storynahe Fortsetzung**
   Eine Handlung, die erwartbar und logisch auf die Szene folgt und den traditionellen Märchenverlauf weiterführt.
2. **Option B – Alternative Wendung**
   Eine kreative, aber genre- und stilgerechte Abweichung vom bekannten Verlauf. Diese Option darf überraschend sein, aber muss in der Märchenwelt glaubwürdig bleiben. Stelle sicher, dass sich Option A und B in Handlung, Ton oder Risiko deutlich unterscheiden, um eine echte Wahlmöglichkeit zu bieten.
Jede Option soll sprachlich einfach, stimmungsvoll und kindgerecht formuliert sein. Die Vorschläge müssen **zur erzählten Szene passen**, dürfen aber **nicht deren Inhalt wiederholen**.
Format your entire response content ONLY as a valid JSON object string, DONT use markdown and keep the output format cause its very important: {"storySegment": "...", "choices": ["...", "..."]}`

// summarySystemPromptFormat is the default system instruction for the
// running-summary refresh.
const summarySystemPromptFormat = "You are an expert story summarizer. Condense the 'Existing Summary' and 'Recent Developments' into a single, updated, concise summary capturing the current plot state, characters, and setting of this interactive story based on the tale '%s'. Focus on information needed to continue the story logically. Output ONLY the updated summary text. DO IT IN GERMAN"

// buildNarratorSystemPrompt renders the scene-generation system
// prompt. A non-empty custom prompt replaces the default entirely;
// placeholders are substituted in either case.
func buildNarratorSystemPrompt(custom, taleTitle, currentSummary, taleContext string) string {
	prompt := narratorSystemPrompt
	if custom != "" {
		prompt = custom
	}
	return strings.NewReplacer(
		placeholderTaleTitle, taleTitle,
		placeholderCurrentSummary, currentSummary,
		placeholderTaleContext, taleContext,
	).Replace(prompt)
}

// buildNarratorUserPrompt renders the user message: the recent
// interaction window with a marker telling the model whether older
// history exists beyond it.
func buildNarratorUserPrompt(history []string) string {
	marker := "[Start of History]"
	if len(history) > maxHistoryForPrompt {
		marker = "[... earlier history summarized ...]"
	}
	window := tailWindow(history, maxHistoryForPrompt)

	return fmt.Sprintf(`Recent Interaction History:
%s
%s

(The user's most recent action is the last message in the history above)

Your JSON Response:`, marker, strings.Join(window, "\n"))
}

// buildSummarySystemPrompt renders the summary system prompt,
// honoring a custom override with placeholder substitution.
func buildSummarySystemPrompt(custom, taleTitle, existingSummary string) string {
	if custom != "" {
		return strings.NewReplacer(
			placeholderTaleTitle, taleTitle,
			placeholderExistingSummary, existingSummary,
		).Replace(custom)
	}
	return fmt.Sprintf(summarySystemPromptFormat, taleTitle)
}

// buildSummaryUserPrompt renders the summary user message.
func buildSummaryUserPrompt(existingSummary string, recentDevelopments []string) string {
	return fmt.Sprintf(`Existing Summary:
%s

Recent Developments:
%s

Updated Summary:`, existingSummary, strings.Join(recentDevelopments, "\n"))
}

// tailWindow returns the last n entries of history without copying.
func tailWindow(history []string, n int) []string {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
