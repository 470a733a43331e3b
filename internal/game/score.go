package game

// Score sums the point value of every card left in the losers' hands: that
// total is the winner's score delta for the match. Number cards score face
// value, Skip/Reverse/DrawTwo score 20, wilds score 50.
func Score(winner Identity, hands map[Identity]Hand) int {
	total := 0
	for id, hand := range hands {
		if id == winner {
			continue
		}
		total += hand.Points()
	}
	return total
}
