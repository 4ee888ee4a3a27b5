package config

// #region sample

// SampleDefinitionYAML is written by `deliberate init` as a starting point.
const SampleDefinitionYAML = `# deliberate experiment definition
name: justice-deliberation

actors:
  - id: alice
    name: Alice
    model: llama3.1:8b
    persona: "You are Alice, a cautious planner who worries about worst-case outcomes."
    temperature: 0.7
  - id: bob
    name: Bob
    model: llama3.1:8b
    persona: "You are Bob, an optimist who believes in maximizing overall prosperity."
    temperature: 0.7
  - id: carol
    name: Carol
    model: llama3.1:8b
    persona: "You are Carol, a pragmatist looking for workable compromises."
    temperature: 0.7

principles:
  - id: 1
    name: Maximize the floor
    description: Pick the distribution whose worst-off class earns the most.
    param: none
  - id: 2
    name: Maximize the average
    description: Pick the distribution with the highest average income.
    param: none
  - id: 3
    name: Maximize the average with a floor constraint
    description: Among distributions whose floor meets your minimum, pick the highest average.
    param: floor-amount
  - id: 4
    name: Maximize the average with a range constraint
    description: Among distributions whose income spread stays within your limit, pick the highest average.
    param: range-amount

distributions:
  name: standard
  options:
    - id: 1
      classes: {high: 32000, medium: 27000, low: 12000}
    - id: 2
      classes: {high: 28000, medium: 22000, low: 13000}
    - id: 3
      classes: {high: 31000, medium: 24000, low: 14000}
    - id: 4
      classes: {high: 21000, medium: 20000, low: 15000}

payout_ratio: 0.0001
max_rounds: 10
individual_rounds: 4

decision_rule:
  rule: unanimity

strategies:
  memory: decomposed
  turn_order: random-constraint

fallback: random-assignment
default_principle: 1
ballot: true
timeout_minutes: 30
ranking_workers: 3
`

// #endregion
