package mcpserver

// SubmissionFormatContract describes how a venue suggestion is shaped and
// how it becomes a directory record once approved.
const SubmissionFormatContract = `# Venue Suggestion Format

A suggestion has two halves. Both are JSON objects.

## placeData

| field         | required | notes                                      |
|---------------|----------|--------------------------------------------|
| name          | yes      | display name, 1-200 characters             |
| address       | no       | full street address; include the district  |
| phone         | no       | digits, spaces and + ( ) - . only          |
| website       | no       | absolute URL                               |
| googleMapsUrl | no       | absolute URL                               |

## userInput

| field         | required | notes                                             |
|---------------|----------|---------------------------------------------------|
| category      | yes      | one of the venue types from list_taxonomy         |
| cuisines      | no       | list of tags; a single "cuisine" string also works|
| comments      | no       | free text, up to 2000 characters                  |
| submitterName | no       | shown as the suggester; defaults to "Anonymous"   |

## What happens on approval

- The category becomes the venue type. Unknown categories are refused.
- The first cuisine tag becomes the venue cuisine when it is a known cuisine.
- Every cuisine tag becomes a feature, as does the category unless it is
  "restaurant". "Dine-in" is always added.
- Comments mentioning delivery, takeaway, breakfast, lunch, dinner, wifi,
  parking or reservations add the matching feature.
- Suggestions carry no price, so they filter and sort as "medium".

## Example

` + "```" + `json
{
  "placeData": {"name": "Cộng Cà Phê", "address": "26 Ly Tu Trong, District 1"},
  "userInput": {"category": "cafe", "cuisines": ["coffee"], "comments": "great wifi, takeaway"}
}
` + "```" + `
`
