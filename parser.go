package tablegrid

import (
	"fmt"
	"strconv"
	"strings"
)

type NodePosition struct {
	Start int
	End   int
}

// ASTNode is one node of a parsed fragment expression. evaluation is pure:
// the only outside state a node can reach is the reducer table.
type ASTNode interface {
	Eval(rt *ReducerTable) (Primitive, error)
	GetPosition() NodePosition
	ToString() string
}

// Parser parses tokens into an AST
type Parser struct {
	tokens []Token
	pos    int
}

// StringNode represents a string literal
type StringNode struct {
	Value    string
	Position NodePosition
}

func (n *StringNode) Eval(rt *ReducerTable) (Primitive, error) {
	return n.Value, nil
}

func (n *StringNode) GetPosition() NodePosition {
	return n.Position
}

func (n *StringNode) ToString() string {
	escaped := strings.ReplaceAll(n.Value, "\"", "\"\"")
	return fmt.Sprintf("\"%s\"", escaped)
}

// NumberNode represents a numeric literal
type NumberNode struct {
	Value    float64
	Position NodePosition
}

func (n *NumberNode) Eval(rt *ReducerTable) (Primitive, error) {
	return n.Value, nil
}

func (n *NumberNode) GetPosition() NodePosition {
	return n.Position
}

func (n *NumberNode) ToString() string {
	return formatNumber(n.Value)
}

// BinaryOpNode represents a binary operation
type BinaryOpNode struct {
	Op       BinaryOp
	Left     ASTNode
	Right    ASTNode
	Position NodePosition
}

func (n *BinaryOpNode) Eval(rt *ReducerTable) (Primitive, error) {
	leftVal, err := n.Left.Eval(rt)
	if err != nil {
		return nil, err
	}
	rightVal, err := n.Right.Eval(rt)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case BinOpAdd:
		// a string on either side turns + into concatenation
		if isString(leftVal) || isString(rightVal) {
			return toString(leftVal) + toString(rightVal), nil
		}
		leftNum, leftOk := toNumber(leftVal)
		rightNum, rightOk := toNumber(rightVal)
		if !leftOk || !rightOk {
			return nil, NewGridError(ErrorCodeEvaluation, "addition requires numeric values")
		}
		return leftNum + rightNum, nil

	case BinOpSubtract:
		leftNum, leftOk := toNumber(leftVal)
		rightNum, rightOk := toNumber(rightVal)
		if !leftOk || !rightOk {
			return nil, NewGridError(ErrorCodeEvaluation, "subtraction requires numeric values")
		}
		return leftNum - rightNum, nil

	case BinOpMultiply:
		leftNum, leftOk := toNumber(leftVal)
		rightNum, rightOk := toNumber(rightVal)
		if !leftOk || !rightOk {
			return nil, NewGridError(ErrorCodeEvaluation, "multiplication requires numeric values")
		}
		return leftNum * rightNum, nil

	case BinOpDivide:
		leftNum, leftOk := toNumber(leftVal)
		rightNum, rightOk := toNumber(rightVal)
		if !leftOk || !rightOk {
			return nil, NewGridError(ErrorCodeEvaluation, "division requires numeric values")
		}
		if rightNum == 0 {
			return nil, NewGridError(ErrorCodeEvaluation, "division by zero")
		}
		return leftNum / rightNum, nil

	default:
		return nil, NewGridError(ErrorCodeEvaluation, "unknown operator")
	}
}

func (n *BinaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *BinaryOpNode) ToString() string {
	opStr := ""
	switch n.Op {
	case BinOpAdd:
		opStr = "+"
	case BinOpSubtract:
		opStr = "-"
	case BinOpMultiply:
		opStr = "*"
	case BinOpDivide:
		opStr = "/"
	}
	return fmt.Sprintf("(%s%s%s)", n.Left.ToString(), opStr, n.Right.ToString())
}

// UnaryOpNode represents a unary operation
type UnaryOpNode struct {
	Op       UnaryOp
	Operand  ASTNode
	Position NodePosition
}

func (n *UnaryOpNode) Eval(rt *ReducerTable) (Primitive, error) {
	val, err := n.Operand.Eval(rt)
	if err != nil {
		return nil, err
	}

	num, ok := toNumber(val)
	if !ok {
		return nil, NewGridError(ErrorCodeEvaluation, "unary operator requires a numeric value")
	}
	switch n.Op {
	case UnaryOpPlus:
		return num, nil
	case UnaryOpMinus:
		return -num, nil
	default:
		return nil, NewGridError(ErrorCodeEvaluation, "unknown unary operator")
	}
}

func (n *UnaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *UnaryOpNode) ToString() string {
	opStr := "+"
	if n.Op == UnaryOpMinus {
		opStr = "-"
	}
	return opStr + n.Operand.ToString()
}

// FunctionCallNode represents a reducer call such as SUM(1,2)
type FunctionCallNode struct {
	Name     string
	Args     []ASTNode
	Position NodePosition
}

func (n *FunctionCallNode) Eval(rt *ReducerTable) (Primitive, error) {
	args := make([]Primitive, len(n.Args))
	for i, argNode := range n.Args {
		argVal, err := argNode.Eval(rt)
		if err != nil {
			return nil, err
		}
		args[i] = argVal
	}

	if rt == nil {
		return nil, NewGridError(ErrorCodeEvaluation, "unknown function: "+n.Name)
	}
	result, ok, err := rt.Call(n.Name, args)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewGridError(ErrorCodeEvaluation, "unknown function: "+n.Name)
	}
	return result, nil
}

func (n *FunctionCallNode) GetPosition() NodePosition {
	return n.Position
}

func (n *FunctionCallNode) ToString() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.ToString()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ","))
}

// NewParser creates a new parser over tokens produced by Lexer.Tokenize
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseExpression lexes and parses src in one step
func ParseExpression(src string) (ASTNode, error) {
	tokens, lexErr := NewLexer(src).Tokenize()
	if lexErr != "" {
		return nil, NewGridError(ErrorCodeEvaluation, lexErr)
	}
	return NewParser(tokens).Parse()
}

// EvaluateExpression parses and evaluates src against rt
func EvaluateExpression(src string, rt *ReducerTable) (Primitive, error) {
	node, err := ParseExpression(src)
	if err != nil {
		return nil, err
	}
	return node.Eval(rt)
}

// Parse parses the tokens into an AST
func (p *Parser) Parse() (ASTNode, error) {
	if len(p.tokens) == 0 {
		return nil, NewGridError(ErrorCodeEvaluation, "no tokens to parse")
	}

	node, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.tokens) && p.tokens[p.pos].Type != TokenEOF {
		return nil, NewGridError(ErrorCodeEvaluation, fmt.Sprintf("unexpected token after expression: %s", p.tokens[p.pos].Value))
	}

	return node, nil
}

// parseAddition handles addition and subtraction (lowest precedence)
func (p *Parser) parseAddition() (ASTNode, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Type != TokenBinaryOp {
			break
		}

		var op BinaryOp
		switch tok.Value {
		case "+":
			op = BinOpAdd
		case "-":
			op = BinOpSubtract
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseMultiplication handles multiplication and division
func (p *Parser) parseMultiplication() (ASTNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Type != TokenBinaryOp {
			break
		}

		var op BinaryOp
		switch tok.Value {
		case "*":
			op = BinOpMultiply
		case "/":
			op = BinOpDivide
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseUnary handles unary operators
func (p *Parser) parseUnary() (ASTNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, NewGridError(ErrorCodeEvaluation, "unexpected end of expression")
	}

	tok := p.tokens[p.pos]
	if tok.Type != TokenUnaryPrefixOp {
		return p.parsePrimary()
	}

	op := UnaryOpPlus
	if tok.Value == "-" {
		op = UnaryOpMinus
	}
	p.pos++
	operand, err := p.parseUnary() // recurse for chained unary operators
	if err != nil {
		return nil, err
	}

	return &UnaryOpNode{
		Op:       op,
		Operand:  operand,
		Position: NodePosition{Start: tok.Pos, End: operand.GetPosition().End},
	}, nil
}

// parsePrimary handles literals, reducer calls and parentheses
func (p *Parser) parsePrimary() (ASTNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, NewGridError(ErrorCodeEvaluation, "unexpected end of expression")
	}

	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenNumber:
		p.pos++
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, NewGridError(ErrorCodeEvaluation, fmt.Sprintf("invalid number: %s", tok.Value))
		}
		return &NumberNode{
			Value:    val,
			Position: NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value)},
		}, nil

	case TokenString:
		p.pos++
		return &StringNode{
			Value:    tok.Value,
			Position: NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value) + 2}, // +2 for quotes
		}, nil

	case TokenFunction:
		return p.parseFunctionCall()

	case TokenLeftParen:
		p.pos++
		node, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenRightParen {
			return nil, NewGridError(ErrorCodeEvaluation, "expected closing parenthesis")
		}
		p.pos++
		return node, nil

	default:
		return nil, NewGridError(ErrorCodeEvaluation, fmt.Sprintf("unexpected token: %s", tok.Value))
	}
}

// parseFunctionCall parses a reducer call
func (p *Parser) parseFunctionCall() (ASTNode, error) {
	funcTok := p.tokens[p.pos]
	p.pos++

	if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenLeftParen {
		return nil, NewGridError(ErrorCodeEvaluation, "expected '(' after function name")
	}
	p.pos++

	args := []ASTNode{}

	// empty argument list
	if p.pos < len(p.tokens) && p.tokens[p.pos].Type == TokenRightParen {
		p.pos++
		return &FunctionCallNode{
			Name:     funcTok.Value,
			Args:     args,
			Position: NodePosition{Start: funcTok.Pos, End: p.tokens[p.pos-1].Pos + 1},
		}, nil
	}

	for {
		arg, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.pos >= len(p.tokens) {
			return nil, NewGridError(ErrorCodeEvaluation, "unexpected end in function arguments")
		}
		if p.tokens[p.pos].Type == TokenRightParen {
			p.pos++
			break
		}
		if p.tokens[p.pos].Type != TokenComma {
			return nil, NewGridError(ErrorCodeEvaluation, "expected ',' or ')' in function arguments")
		}
		p.pos++
	}

	return &FunctionCallNode{
		Name:     funcTok.Value,
		Args:     args,
		Position: NodePosition{Start: funcTok.Pos, End: p.tokens[p.pos-1].Pos + 1},
	}, nil
}
