package sqlinline

const QCountActiveDonors = `--sql 40a44cd8-9914-4cd3-8841-53ef11ec3850
select count(*)
from donors
where status = 'Active';
`

const QCountLapsedDonors = `--sql 758e092f-343b-4d94-b716-c6f762d91aa8
select count(*)
from (
    select d.name, max(dn.due_date) as last_due_date
    from donors d
    left join payment_details pd on pd.donor = d.name
    left join donations dn on dn.name = pd.parent and dn.docstatus = 1
    where d.status = 'Active'
    group by d.name
    having max(dn.due_date) < current_date - $1::int
) lapsed;
`

const QReEngagementRate = `--sql c93739ba-48ec-4e9b-bfe0-737a078aed7f
select coalesce(round(
    100.0 * count(distinct case when dn.due_date >= current_date - $1::int then pd.donor end)
    / nullif(count(distinct d.name), 0), 2), 0)::float8
from donors d
join payment_details pd on pd.donor = d.name
join donations dn on dn.name = pd.parent and dn.docstatus = 1
where d.status = 'Active';
`

const QListLapsedDonors = `--sql bea4fe35-0499-4c0d-8682-eaa3b8339b36
select d.name, d.donor_name, max(dn.due_date), coalesce(sum(pd.donation_amount), 0)::float8
from donors d
join payment_details pd on pd.donor = d.name
join donations dn on dn.name = pd.parent and dn.docstatus = 1
where d.status = 'Active'
group by d.name, d.donor_name
having max(dn.due_date) < current_date - $1::int
order by max(dn.due_date) asc, d.name asc;
`
