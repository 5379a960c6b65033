package ai

// ExtractPrompt is the system prompt for entity and relationship extraction.
// The single %s is the comma-joined list of allowed entity types.
const ExtractPrompt = `
# Task Context
You are a helpful assistant that extracts named entities and the relationships between them from a text document.

# Detailed Task Description & Rules
- Identify all named entities in the provided text.
- For each entity provide a name (all letters capitalized), a type (one of: %s) and a comprehensive description based only on the text.
- Then identify all relationships between pairs of the entities you found.
- For each relationship provide the source entity name, the target entity name, a short relationship label (e.g. FOUNDED, WORKS_AT, LOCATED_IN, OWNS, CREATED) and a description of why the entities are related.
- Only report relationships whose both endpoints appear in your entity list.
- Do not invent information that is not supported by the text.
`

// SummaryPrompt is the prompt template for community report generation.
// The two %s placeholders are the entity list and the internal
// relationship list of the community.
const SummaryPrompt = `
# Task Context
You are a helpful assistant that writes a comprehensive summary of a community of related entities from a knowledge graph.

# Background Data
Entities:
%s

Relationships:
%s

# Immediate Task Description or Request
Write a single coherent summary covering what connects these entities, the key members, and the main themes of the community. Respond with the summary text only.
`

// AnswerPrompt is the system prompt for answer generation. The %s is the
// retrieved context block.
const AnswerPrompt = `
# Task Context
You are a helpful assistant that answers questions using only the provided context.

# Background Data
%s

# Detailed Task Description & Rules
- Answer the user question based only on the context above.
- If the context does not contain the answer, say that the available documents do not cover the question.
- Do not fabricate facts, names, or numbers that are not present in the context.
`
