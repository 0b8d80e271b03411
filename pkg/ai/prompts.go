package ai

const ExtractPrompt = `
# Task Context
You are tasked with extracting **structured entity and relationship information** from the provided text to build a knowledge graph. The process must capture **all details explicitly present in the text**, without omission.

# Background Data
- **Allowed_node_types:** [%s]
- **Allowed_relationship_types:** [%s]
- **Document_name:** [%s]

The document name may contain hints about the primary entity (e.g., *"House Data X"* → inferred entity: *"HOUSE X"*). Use it only if the text itself does not clearly specify an entity.

# Detailed Task Description & Rules
- If Allowed_node_types is empty or "any", you may choose any sensible node type; otherwise every node type must be one of the allowed values.
- If Allowed_relationship_types is empty or "any", you may choose any sensible relationship type; otherwise every relationship type must be one of the allowed values.
- Relationship endpoints must reference nodes that appear in the "nodes" array of the same output.

## Node Extraction
1. Identify all entities mentioned in the text.
2. For each entity, extract:
   - **id:** The human-readable name of the entity as it appears in the text.
   - **type:** The type of the entity (e.g., Person, Organization, Location).
   - **description:** A comprehensive description of all attributes, roles, activities, events, timelines, frequencies, or other explicit details in the text. Do **not** omit any explicit information.

## Relationship Extraction
1. From the identified nodes, determine all clear relationships between pairs of nodes.
2. For each relationship, extract:
   - **source_id / source_type:** the node the relationship starts from.
   - **target_id / target_type:** the node the relationship points to.
   - **type:** a short verb-like label describing the relationship (e.g., WORKS_FOR, LOCATED_IN).
3. If the text only describes a single entity, return an **empty array** for "relationships".

# Examples
**Text:**
The Verdantis Central Institution is scheduled to meet on Monday and Thursday.
Central Institution Chair Martin Smith will take questions at the press conference.

**Output:**
{
  "nodes": [
    {
      "id": "Verdantis Central Institution",
      "type": "Organization",
      "description": "An institution that meets on Mondays and Thursdays and hosts press conferences after policy releases."
    },
    {
      "id": "Martin Smith",
      "type": "Person",
      "description": "Chair of the Verdantis Central Institution, scheduled to answer questions at a press conference."
    }
  ],
  "relationships": [
    {
      "source_id": "Martin Smith",
      "source_type": "Person",
      "type": "CHAIR_OF",
      "target_id": "Verdantis Central Institution",
      "target_type": "Organization"
    }
  ]
}

# Thinking Step by Step
Think step-by-step and extract all nodes and relationships as specified.

# Output Formatting
Return a single valid JSON object matching the requested schema.
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if no nodes or relationships are found (use empty arrays in that case).
`

// Text slice used verbatim when no allow-list is configured.
const AnyTypeHint = "any"
